package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pathwise",
	Short: "K-5 math skill tree in the terminal",
	Long:  "Pathwise walks a learner through a K-5 math skill tree: lessons unlock in order, quizzes earn stars, and hearts keep practice honest.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlayer(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PATHWISE_DB)")
	rootCmd.PersistentFlags().String("user", "local", "Learner ID")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(heartsCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(exerciseCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

func userFlag(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString("user")
	return u
}
