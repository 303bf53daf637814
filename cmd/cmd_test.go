package cmd

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/skillgraph"
)

func TestHeartsLine(t *testing.T) {
	if got := heartsLine(engine.HeartsView{Current: 3, Max: 5}); got != "Hearts: ♥♥♥♡♡  3/5" {
		t.Errorf("heartsLine = %q", got)
	}

	depleted := engine.HeartsView{
		Max:       5,
		Depleted:  true,
		RefillAt:  time.Now().Add(20 * time.Minute),
		Remaining: 20 * time.Minute,
	}
	got := heartsLine(depleted)
	if !strings.HasPrefix(got, "Hearts: ♡♡♡♡♡  0/5") || !strings.Contains(got, "in 20m0s") {
		t.Errorf("heartsLine = %q", got)
	}
}

func TestFormatData(t *testing.T) {
	got := formatData(map[string]string{"score": "90", "node": "count-to-20", "unlocked": ""})
	if got != "node=count-to-20 score=90" {
		t.Errorf("formatData = %q", got)
	}
	if got := formatData(nil); got != "" {
		t.Errorf("formatData(nil) = %q", got)
	}
}

func TestPrintTree(t *testing.T) {
	g := skillgraph.Default()
	first := g.Nodes()[0]
	tree := engine.TreeView{
		Nodes: []engine.NodeView{{
			Node: first,
			Progress: progress.NodeProgress{
				NodeID: first.ID, Status: progress.StatusCompleted, Stars: 2, BestScore: 75, Attempts: 1,
			},
		}},
		Completed:  1,
		TotalStars: 2,
		Hearts:     engine.HeartsView{Current: 5, Max: 5},
	}

	var buf bytes.Buffer
	if err := printTree(&buf, tree, ""); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{first.ID, "★★☆  best 75", "1/1 completed, 2 stars", "Hearts: ♥♥♥♥♥  5/5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if err := printTree(&buf, tree, "astronomy"); err == nil {
		t.Error("expected an error for an unknown subject")
	}
}

func TestAsk(t *testing.T) {
	tests := []struct {
		input  string
		answer string
		ok     bool
	}{
		{"  7 \n", "7", true},
		{"\n", "", false},
		{"Q\n", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		in := bufio.NewScanner(strings.NewReader(tt.input))
		answer, ok := ask(&out, in, 1, 3, "What is 3 + 4?", bank.FormatText, nil)
		if answer != tt.answer || ok != tt.ok {
			t.Errorf("ask(%q) = %q, %v", tt.input, answer, ok)
		}
		if !strings.Contains(out.String(), "Question 1/3") {
			t.Errorf("prompt not printed: %q", out.String())
		}
	}
}

func TestAsk_ListsChoices(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewScanner(strings.NewReader("1,3\n"))
	ask(&out, in, 2, 2, "Pick the even numbers", bank.FormatMultiSelect, []string{"2", "3", "4"})
	for _, want := range []string{"1) 2", "3) 4", "separated by commas"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("learner-one", 7); got != "learner" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("me", 7); got != "me" {
		t.Errorf("truncate = %q", got)
	}
}
