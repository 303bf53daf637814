package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/engine"
)

var heartsCmd = &cobra.Command{
	Use:   "hearts",
	Short: "Show the learner's hearts and refill timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		h, err := e.engine.Hearts(cmd.Context(), userFlag(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), heartsLine(h))
		return nil
	},
}

func heartsLine(h engine.HeartsView) string {
	line := fmt.Sprintf("Hearts: %s%s  %d/%d",
		strings.Repeat("♥", h.Current), strings.Repeat("♡", max(h.Max-h.Current, 0)), h.Current, h.Max)
	if h.Depleted && !h.RefillAt.IsZero() {
		line += fmt.Sprintf("  (refill at %s, in %s)",
			h.RefillAt.Local().Format(time.Kitchen), h.Remaining.Round(time.Second))
	}
	return line
}
