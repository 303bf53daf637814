package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		recs, err := s.LLMRequests().Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(w, "No LLM requests recorded.")
			return nil
		}

		fmt.Fprintf(w, "%-6s  %-19s  %-18s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"Seq", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Fprintln(w, strings.Repeat("─", 104))

		var in, out int
		for _, r := range recs {
			if purpose != "" && r.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !r.Success {
				ok = "✗"
			}
			fmt.Fprintf(w, "%-6d  %-19s  %-18s  %-28s  %-6d  %-6d  %-7d  %s\n",
				r.Sequence,
				r.At.Local().Format("2006-01-02 15:04:05"),
				truncate(r.Purpose, 18),
				truncate(r.Model, 28),
				r.InputTokens,
				r.OutputTokens,
				r.LatencyMs,
				ok,
			)
			in += r.InputTokens
			out += r.OutputTokens
		}
		fmt.Fprintln(w, strings.Repeat("─", 104))
		fmt.Fprintf(w, "%d input tokens, %d output tokens\n", in, out)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <seq>",
	Short: "Show the full request and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sequence %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		recs, err := s.LLMRequests().Recent(cmd.Context(), 0)
		if err != nil {
			return err
		}
		for _, r := range recs {
			if r.Sequence == seq {
				printLLMRequest(cmd, r)
				return nil
			}
		}
		return fmt.Errorf("LLM request %d not found", seq)
	},
}

func printLLMRequest(cmd *cobra.Command, r store.LLMRequest) {
	w := cmd.OutOrStdout()
	sep := strings.Repeat("─", 60)

	fmt.Fprintf(w, "Seq:       %d\n", r.Sequence)
	fmt.Fprintf(w, "Time:      %s\n", r.At.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provider:  %s\n", r.Provider)
	fmt.Fprintf(w, "Model:     %s\n", r.Model)
	fmt.Fprintf(w, "Purpose:   %s\n", r.Purpose)
	fmt.Fprintf(w, "Tokens:    %d in / %d out\n", r.InputTokens, r.OutputTokens)
	fmt.Fprintf(w, "Latency:   %dms\n", r.LatencyMs)
	fmt.Fprintf(w, "Success:   %v\n", r.Success)
	if r.Error != "" {
		fmt.Fprintf(w, "Error:     %s\n", r.Error)
	}

	for _, part := range []struct{ title, body string }{
		{"REQUEST", r.Request},
		{"RESPONSE", r.Response},
	} {
		fmt.Fprintf(w, "\n%s\n%s\n%s\n", sep, part.title, sep)
		if part.body == "" {
			fmt.Fprintln(w, "(not captured)")
			continue
		}
		fmt.Fprintln(w, part.body)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (lesson-exercises, quiz-questions)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
}
