package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/engine"
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise <lesson>",
	Short: "Work through a lesson's exercises without repeats",
	Long: `Serve the lesson's exercises one at a time, never repeating one within the
run. Type "s" to skip an exercise, or an empty line or "q" to stop.
Wrong answers cost a heart.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		user := userFlag(cmd)
		w := cmd.OutOrStdout()

		runID, err := e.engine.StartExercises(ctx, user, args[0])
		if err != nil {
			return err
		}
		in := bufio.NewScanner(cmd.InOrStdin())

		ex, err := e.engine.NextExercise(ctx, user, runID)
		for err == nil {
			fmt.Fprintf(w, "── Exercise %d ──\n%s\n", ex.Served, ex.Prompt)
			for i, c := range ex.Choices {
				fmt.Fprintf(w, "  %d) %s\n", i+1, c)
			}
			fmt.Fprint(w, "\nYour answer: ")
			if !in.Scan() {
				fmt.Fprintln(w)
				break
			}
			line := strings.TrimSpace(in.Text())
			if line == "" || strings.EqualFold(line, "q") {
				break
			}
			if strings.EqualFold(line, "s") {
				ex, err = e.engine.SkipExercise(ctx, user, runID)
				fmt.Fprintln(w)
				continue
			}

			item := bank.Item{Format: ex.Format, Choices: ex.Choices}
			res, subErr := e.engine.SubmitExercise(ctx, uuid.NewString(), user, runID, item.ParseAnswer(line))
			if errors.Is(subErr, engine.ErrOutOfLives) {
				fmt.Fprintln(w, "Out of hearts! Take a recovery quiz to keep going.")
				break
			}
			if subErr != nil {
				return subErr
			}
			printVerdict(w, res.Attempt.IsCorrect, res.CorrectAnswer, res.Explanation)
			fmt.Fprintf(w, "Hearts: %d/%d\n\n", res.Hearts.Current, res.Hearts.Max)
			if res.Hearts.Depleted {
				fmt.Fprintln(w, "Out of hearts! Take a recovery quiz to keep going.")
				break
			}
			ex, err = e.engine.NextExercise(ctx, user, runID)
		}
		if err != nil && !errors.Is(err, engine.ErrNoExerciseAvailable) {
			return err
		}
		if errors.Is(err, engine.ErrNoExerciseAvailable) {
			fmt.Fprintln(w, "That was every exercise in this lesson.")
		}

		sum, err := e.engine.EndExercises(user, runID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "── %d of %d correct, %d served ──\n", sum.Correct, len(sum.Attempts), len(sum.Served))
		return nil
	},
}
