package history

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/screens/screentest"
	"github.com/abhisek/pathwise/internal/store"
)

type failingSource struct{}

func (failingSource) QueryEvents(context.Context, store.QueryOpts) ([]store.StoredEvent, error) {
	return nil, errors.New("disk on fire")
}

func load(s *HistoryScreen) {
	for _, msg := range screentest.Run(s.Init()) {
		s.Update(msg)
	}
}

func TestHistory_ListsNewestFirst(t *testing.T) {
	eng, st := screentest.EngineWithStore(t)
	if _, err := eng.CompleteNode(context.Background(), "", screentest.User, "A", 80); err != nil {
		t.Fatal(err)
	}

	s := New(st.Events(), screentest.Graph(), screentest.User)
	if !strings.Contains(s.View(100, 30), "Loading") {
		t.Error("expected a loading message before the events arrive")
	}
	load(s)

	if len(s.items) < 2 {
		t.Fatalf("got %d events, want the completion and the unlock", len(s.items))
	}
	view := s.View(100, 30)
	for _, want := range []string{"Finished Counting to 10 with 80", "+10 XP", "Unlocked Adding ones"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Index(view, "Unlocked Adding ones") > strings.Index(view, "Finished Counting to 10") {
		t.Error("events are not newest first")
	}
}

func TestHistory_ExpandShowsFields(t *testing.T) {
	eng, st := screentest.EngineWithStore(t)
	if _, err := eng.CompleteNode(context.Background(), "", screentest.User, "A", 95); err != nil {
		t.Fatal(err)
	}
	s := New(st.Events(), screentest.Graph(), screentest.User)
	load(s)

	// Move to the completion, below the unlock.
	for i := range s.items {
		if s.items[i].Data["score"] == "95" {
			break
		}
		s.Update(screentest.Special(tea.KeyDown))
	}
	s.Update(screentest.Special(tea.KeyEnter))
	if !strings.Contains(s.View(100, 30), "best_score") {
		t.Error("expanded event does not list its fields")
	}
	s.Update(screentest.Special(tea.KeyEnter))
	if strings.Contains(s.View(100, 30), "best_score") {
		t.Error("second enter should collapse the event")
	}
}

func TestHistory_OtherLearnersAreHidden(t *testing.T) {
	eng, st := screentest.EngineWithStore(t)
	if _, err := eng.CompleteNode(context.Background(), "", "someone-else", "A", 80); err != nil {
		t.Fatal(err)
	}
	s := New(st.Events(), screentest.Graph(), screentest.User)
	load(s)
	if !strings.Contains(s.View(100, 30), "Nothing here yet") {
		t.Error("expected an empty history for a learner with no events")
	}
}

func TestHistory_LoadError(t *testing.T) {
	s := New(failingSource{}, screentest.Graph(), screentest.User)
	load(s)
	if !strings.Contains(s.View(100, 30), "disk on fire") {
		t.Error("load error not shown")
	}
}
