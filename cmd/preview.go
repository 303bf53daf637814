package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/config"
	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/logging"
	"github.com/abhisek/pathwise/internal/skillgraph"
)

var previewCmd = &cobra.Command{
	Use:   "preview <node>",
	Short: "Preview LLM-generated items for a node (no database)",
	Long: `Generate items for one node of the skill tree and answer them in the
terminal. Nothing is stored: no progress, no hearts, no request log.
Useful for judging item quality for a node.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Int("count", 5, "Number of items to generate")
	previewCmd.Flags().Bool("exercises", false, "Generate lesson exercises instead of quiz questions")
}

func runPreview(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	exercises, _ := cmd.Flags().GetBool("exercises")

	graph := skillgraph.Default()
	node, err := graph.GetNode(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	provider, err := llm.NewProvider(cmd.Context(), cfg.LLM.ProviderConfig(), nil, logger)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	if provider == nil {
		return fmt.Errorf("no LLM provider configured; set PATHWISE_LLM_PROVIDER")
	}

	gcfg := bank.DefaultGeneratorConfig()
	gcfg.BatchSize = count
	gcfg.Logger = logger
	gen := bank.NewGenerator(provider, graph, gcfg)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Node: %s (%s, grade %s)\n", node.Name, node.ID, skillgraph.GradeLabel(node.GradeLevel))
	fmt.Fprintf(w, "Generating %d items...\n\n", count)

	var items []bank.Item
	if exercises {
		ex, err := gen.ExercisesForLesson(cmd.Context(), node.ID)
		if err != nil {
			return err
		}
		for _, e := range ex {
			items = append(items, e.Item)
		}
	} else {
		qs, err := gen.QuizQuestions(cmd.Context(), node.ID, count)
		if err != nil {
			return err
		}
		for _, q := range qs {
			items = append(items, q.Item)
		}
	}

	in := bufio.NewScanner(cmd.InOrStdin())
	var correct, answered int
	for i, it := range items {
		line, ok := ask(w, in, i+1, len(items), it.Prompt, it.Format, it.Choices)
		if !ok {
			break
		}
		answered++
		right := it.Check(it.ParseAnswer(line))
		if right {
			correct++
		}
		printVerdict(w, right, it.DisplayAnswer(), it.Explanation)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "── %d of %d correct (%d generated) ──\n", correct, answered, len(items))
	if answered < len(items) {
		fmt.Fprintln(w, "Stopped early.")
	}
	return nil
}
