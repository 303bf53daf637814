package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/notify"
	"github.com/abhisek/pathwise/internal/store"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the learner's recent progression events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kinds, _ := cmd.Flags().GetStringSlice("kind")
		all, _ := cmd.Flags().GetBool("all-users")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit}
		if !all {
			opts.UserID = userFlag(cmd)
		}
		for _, k := range kinds {
			opts.Kinds = append(opts.Kinds, notify.Kind(k))
		}

		events, err := s.Events().QueryEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(w, "No events found.")
			return nil
		}

		fmt.Fprintf(w, "%-6s  %-19s  %-16s  %-12s  %s\n", "Seq", "Time", "Kind", "User", "Data")
		fmt.Fprintln(w, strings.Repeat("─", 100))
		for _, ev := range events {
			fmt.Fprintf(w, "%-6d  %-19s  %-16s  %-12s  %s\n",
				ev.Sequence,
				ev.At.Local().Format("2006-01-02 15:04:05"),
				ev.Kind,
				truncate(ev.UserID, 12),
				formatData(ev.Data),
			)
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().StringSlice("kind", nil, "Only show these kinds (e.g. node_completed,hearts_refilled)")
	eventsCmd.Flags().Bool("all-users", false, "Show events for every learner")
}

func formatData(data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if data[k] == "" {
			continue
		}
		parts = append(parts, k+"="+data[k])
	}
	return strings.Join(parts, " ")
}
