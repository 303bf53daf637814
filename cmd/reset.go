package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete a learner's progress, hearts, profile and events",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		user := userFlag(cmd)
		if !yes {
			return fmt.Errorf("this deletes everything stored for %q; rerun with --yes to confirm", user)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.Learners().Reset(cmd.Context(), user)
		if err != nil {
			return fmt.Errorf("reset %q: %w", user, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d rows for %q.\n", n, user)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
