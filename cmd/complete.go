package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/mastery"
)

var completeCmd = &cobra.Command{
	Use:   "complete <node> <score>",
	Short: "Record a finished lesson with a 0-100 score",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score %q: %w", args[1], err)
		}
		opID, _ := cmd.Flags().GetString("op-id")

		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.engine.CompleteNode(cmd.Context(), opID, userFlag(cmd), args[0], score)
		w := cmd.OutOrStdout()
		if errors.Is(err, engine.ErrInvalidTransition) {
			fmt.Fprintf(w, "%s: score %d did not beat the best of %d; attempt %d counted\n",
				res.NodeID, score, res.BestScore, res.Attempts)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s: score %d, %s (best %d, attempt %d)\n",
			res.NodeID, res.Score, mastery.StarBar(res.Stars), res.BestScore, res.Attempts)
		if res.XPAwarded > 0 {
			fmt.Fprintf(w, "+%d XP\n", res.XPAwarded)
		}
		if len(res.UnlockedNodeIDs) > 0 {
			fmt.Fprintf(w, "Unlocked: %s\n", strings.Join(res.UnlockedNodeIDs, ", "))
		}
		return nil
	},
}

func init() {
	completeCmd.Flags().String("op-id", "", "Operation ID; repeating it replays the first result")
}
