// Package screentest builds a small engine for exercising screens in tests.
package screentest

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/skillgraph"
	"github.com/abhisek/pathwise/internal/store"
)

// User is the learner every screen test plays as.
const User = "screen-test"

// Every item in the test bank is answered "yes".
const (
	Right = "yes"
	Wrong = "no"
)

// Graph is A -> B -> C, with C in a second subject.
func Graph() *skillgraph.Graph {
	return skillgraph.MustNew([]skillgraph.Node{
		{ID: "A", Name: "Counting to 10", Subject: skillgraph.SubjectCounting, Kind: skillgraph.KindLesson, XPReward: 10},
		{ID: "B", Name: "Adding ones", Subject: skillgraph.SubjectOperations, Kind: skillgraph.KindLesson, Prerequisites: []string{"A"}, XPReward: 20},
		{ID: "C", Name: "Halves", Subject: skillgraph.SubjectFractions, Kind: skillgraph.KindSkill, Prerequisites: []string{"B"}, XPReward: 30},
	})
}

// Bank holds 3 exercises and 10 questions for each node of Graph.
func Bank() *bank.Static {
	var exercises []bank.Exercise
	var questions []bank.Question
	for _, id := range []string{"A", "B", "C"} {
		for i := 1; i <= 3; i++ {
			exercises = append(exercises, bank.Exercise{
				Item:     item(fmt.Sprintf("%s/ex-%d", id, i)),
				LessonID: id,
			})
		}
		for i := 1; i <= 10; i++ {
			questions = append(questions, bank.Question{
				Item:    item(fmt.Sprintf("%s/q-%d", id, i)),
				TopicID: id,
			})
		}
	}
	return bank.NewStatic(exercises, questions, bank.WithRand(rand.New(rand.NewPCG(1, 2))))
}

func item(id string) bank.Item {
	return bank.Item{
		ID:          id,
		Prompt:      "Is " + id + " ready?",
		Format:      bank.FormatText,
		Answer:      []string{Right},
		Explanation: "It always is.",
	}
}

// Engine returns an engine over Graph and Bank backed by a private
// in-memory database.
func Engine(t testing.TB) *engine.Engine {
	t.Helper()
	e, _ := EngineWithStore(t)
	return e
}

// EngineWithStore is Engine that also returns the database behind it.
func EngineWithStore(t testing.TB) (*engine.Engine, *store.Store) {
	t.Helper()
	s, err := store.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	e, err := engine.New(engine.Options{
		Graph: Graph(),
		Bank:  Bank(),
		Repo:  s.Learners(),
		Now:   func() time.Time { return time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC) },
		Rand:  rand.New(rand.NewPCG(3, 4)),
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, s
}

// Key is a printable key press.
func Key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Special is a non-printable key press such as tea.KeyEnter.
func Special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// Type returns one key press per rune of s.
func Type(s string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, Key(r))
	}
	return msgs
}

// Run executes cmd and any batch it expands to, returning the messages
// produced. Ticks and other nil results are dropped.
func Run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, Run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}
