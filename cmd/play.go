package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the skill tree in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlayer(cmd)
	},
}

func init() {
	playCmd.Flags().Bool("no-splash", false, "Skip the welcome screen")
}

// runPlayer launches the terminal player for --user.
func runPlayer(cmd *cobra.Command) error {
	e, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	skip, _ := cmd.Flags().GetBool("no-splash")
	return app.Run(cmd.Context(), e.engine, userFlag(cmd), app.Options{
		Logger:     e.logger,
		Events:     e.store.Events(),
		SkipSplash: skip,
	})
}
