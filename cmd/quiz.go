package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/mastery"
	"github.com/abhisek/pathwise/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <topic>",
	Short: "Take a quiz on a node, one question per line",
	Long: `Take a quiz in the terminal. Type the answer, or the number of a choice.
For multi-select questions separate choices with commas. An empty line or
"q" abandons the quiz without recording it, as does running out of hearts.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().Int("count", 0, "Number of questions (0 uses the configured default)")
	quizCmd.Flags().Bool("recovery", false, "Take a recovery quiz to refill hearts")
	quizCmd.Flags().Bool("practice", false, "Practice without changing the node's progress")
}

func runQuiz(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	recovery, _ := cmd.Flags().GetBool("recovery")
	practice, _ := cmd.Flags().GetBool("practice")

	purpose := quiz.PurposeLesson
	switch {
	case recovery && practice:
		return fmt.Errorf("use --recovery or --practice, not both")
	case recovery:
		purpose = quiz.PurposeRecovery
	case practice:
		purpose = quiz.PurposePractice
	}

	e, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	user := userFlag(cmd)
	w := cmd.OutOrStdout()

	q, err := e.engine.StartQuiz(ctx, user, args[0], purpose, count)
	if errors.Is(err, engine.ErrOutOfLives) {
		fmt.Fprintln(w, "You are out of hearts. Take a recovery quiz with --recovery, or wait for the refill.")
		return nil
	}
	if err != nil {
		return err
	}

	in := bufio.NewScanner(cmd.InOrStdin())
	for _, question := range q.Questions {
		line, ok := ask(w, in, question.Index+1, len(q.Questions), question.Prompt, question.Format, question.Choices)
		if !ok {
			fmt.Fprintln(w, "(quiz abandoned)")
			return e.engine.AbandonQuiz(user, q.ID)
		}
		item := bank.Item{Format: question.Format, Choices: question.Choices}
		res, err := e.engine.SubmitAnswer(ctx, uuid.NewString(), user, q.ID, question.Index, item.ParseAnswer(line))
		if errors.Is(err, engine.ErrOutOfLives) {
			fmt.Fprintln(w, "Out of hearts! Take a recovery quiz with --recovery.")
			return e.engine.AbandonQuiz(user, q.ID)
		}
		if err != nil {
			return err
		}
		printVerdict(w, res.Correct, res.CorrectAnswer, res.Explanation)
		if res.Graded {
			fmt.Fprintf(w, "Hearts: %d/%d\n", res.Hearts.Current, res.Hearts.Max)
			if res.Hearts.Depleted && !res.Completed {
				fmt.Fprintln(w, "Out of hearts! Take a recovery quiz with --recovery.")
				return e.engine.AbandonQuiz(user, q.ID)
			}
		}
		fmt.Fprintln(w)
	}

	out, err := e.engine.FinishQuiz(ctx, uuid.NewString(), user, q.ID)
	if err != nil && !errors.Is(err, engine.ErrInvalidTransition) {
		return err
	}
	printOutcome(w, out)
	return nil
}

// ask prints one item and reads the learner's line. It reports false when
// the learner stops or input ends.
func ask(w io.Writer, in *bufio.Scanner, n, total int, prompt string, format bank.Format, choices []string) (string, bool) {
	fmt.Fprintf(w, "── Question %d/%d ──\n%s\n", n, total, prompt)
	for i, c := range choices {
		fmt.Fprintf(w, "  %d) %s\n", i+1, c)
	}
	if format == bank.FormatMultiSelect {
		fmt.Fprintln(w, "(pick every correct choice, separated by commas)")
	}
	fmt.Fprint(w, "\nYour answer: ")
	if !in.Scan() {
		fmt.Fprintln(w)
		return "", false
	}
	line := strings.TrimSpace(in.Text())
	if line == "" || strings.EqualFold(line, "q") {
		return "", false
	}
	return line, true
}

func printVerdict(w io.Writer, correct bool, answer, explanation string) {
	if correct {
		fmt.Fprintln(w, "✓ Correct!")
	} else {
		fmt.Fprintf(w, "✗ Not quite. Answer: %s\n", answer)
	}
	if explanation != "" {
		fmt.Fprintf(w, "Explanation: %s\n", explanation)
	}
}

func printOutcome(w io.Writer, out engine.QuizOutcome) {
	s := out.Summary
	fmt.Fprintf(w, "── Score %d: %d of %d correct ──\n", s.Score, s.CorrectCount, s.Total)
	switch s.Purpose {
	case quiz.PurposeLesson:
		if !out.Passed {
			fmt.Fprintf(w, "Not passed. Score %d or more to complete this lesson.\n", out.PassScore)
			return
		}
		if n := out.Node; n != nil {
			fmt.Fprintf(w, "%s  best %d", mastery.StarBar(n.Stars), n.BestScore)
			if n.XPAwarded > 0 {
				fmt.Fprintf(w, "  +%d XP", n.XPAwarded)
			}
			fmt.Fprintln(w)
			if len(n.UnlockedNodeIDs) > 0 {
				fmt.Fprintf(w, "Unlocked: %s\n", strings.Join(n.UnlockedNodeIDs, ", "))
			}
		}
	case quiz.PurposeRecovery:
		if out.Recovered {
			fmt.Fprintln(w, "Hearts refilled!")
		} else {
			fmt.Fprintln(w, "Not enough correct to refill hearts. Try again.")
		}
	}
}
