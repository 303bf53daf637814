package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/mastery"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/skillgraph"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the learner's skill tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")

		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		t, err := e.engine.Tree(cmd.Context(), userFlag(cmd))
		if err != nil {
			return err
		}
		return printTree(cmd.OutOrStdout(), t, skillgraph.Subject(subject))
	},
}

func init() {
	treeCmd.Flags().String("subject", "", "Only show one subject (counting-and-place-value, operations, fractions-and-decimals, measurement-and-geometry)")
}

func printTree(w io.Writer, t engine.TreeView, only skillgraph.Subject) error {
	if only != "" && !validSubject(only) {
		return fmt.Errorf("unknown subject %q", only)
	}

	for _, subject := range skillgraph.AllSubjects() {
		if only != "" && subject != only {
			continue
		}
		fmt.Fprintln(w, strings.ToUpper(subject.DisplayName()))
		fmt.Fprintln(w, strings.Repeat("─", 78))
		for _, n := range t.Nodes {
			if n.Node.Subject != subject {
				continue
			}
			name := n.Node.Name
			if len(name) > 36 {
				name = name[:33] + "..."
			}
			fmt.Fprintf(w, "%-24s  %-36s  %-5s  %-9s  %s\n",
				n.Node.ID, name, skillgraph.GradeLabel(n.Node.GradeLevel),
				n.Progress.Status, progressCell(n.Progress))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d/%d completed, %d stars, %d XP, %d day streak\n",
		t.Completed, len(t.Nodes), t.TotalStars, t.Profile.XP, t.Streak)
	fmt.Fprintln(w, heartsLine(t.Hearts))
	return nil
}

func validSubject(s skillgraph.Subject) bool {
	for _, known := range skillgraph.AllSubjects() {
		if s == known {
			return true
		}
	}
	return false
}

func progressCell(p progress.NodeProgress) string {
	if p.Status != progress.StatusCompleted {
		return ""
	}
	return fmt.Sprintf("%s  best %d", mastery.StarBar(p.Stars), p.BestScore)
}
