package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/quiz"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/screens/home"
	"github.com/abhisek/pathwise/internal/screens/play"
	"github.com/abhisek/pathwise/internal/screens/screentest"
	"github.com/abhisek/pathwise/internal/screens/welcome"
)

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(AppModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return am, cmd
}

func TestApp_StartsOnSplash(t *testing.T) {
	m := newAppModel(screentest.Engine(t), screentest.User, Options{})
	if _, ok := m.router.Active().(*welcome.WelcomeScreen); !ok {
		t.Fatalf("active = %T, want the welcome screen", m.router.Active())
	}

	m = newAppModel(screentest.Engine(t), screentest.User, Options{SkipSplash: true})
	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Fatalf("active = %T, want home when the splash is skipped", m.router.Active())
	}
}

func TestApp_LoadsHeaderStats(t *testing.T) {
	m := newAppModel(screentest.Engine(t), screentest.User, Options{SkipSplash: true})
	m, _ = update(t, m, m.loadStats()())

	if m.stats.Hearts != 5 || m.stats.MaxHearts != 5 {
		t.Errorf("stats = %+v, want 5 of 5 hearts", m.stats)
	}

	_, cmd := update(t, m, screen.RefreshStatsMsg{})
	if cmd == nil {
		t.Fatal("refresh should reload stats")
	}
	if _, ok := cmd().(statsLoadedMsg); !ok {
		t.Error("refresh did not produce statsLoadedMsg")
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.width != 100 || m.height != 30 {
		t.Errorf("size = %dx%d, want 100x30", m.width, m.height)
	}
}

func TestApp_EscapePopsPlainScreens(t *testing.T) {
	eng := screentest.Engine(t)
	m := newAppModel(eng, screentest.User, Options{SkipSplash: true})
	m.router.Push(home.New(eng, nil, screentest.User))

	_, cmd := update(t, m, screentest.Special(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("expected a pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("esc did not pop")
	}
}

func TestApp_EscapeGoesToQuiz(t *testing.T) {
	eng := screentest.Engine(t)
	m := newAppModel(eng, screentest.User, Options{SkipSplash: true})
	q := play.NewQuiz(eng, screentest.User, "A", quiz.PurposeLesson)
	m.router.Push(q)

	_, cmd := update(t, m, screentest.Special(tea.KeyEscape))
	if cmd != nil {
		if _, ok := cmd().(router.PopScreenMsg); ok {
			t.Error("esc popped a quiz instead of letting it confirm")
		}
	}
	if m.router.Depth() != 2 {
		t.Errorf("depth = %d, want 2", m.router.Depth())
	}
}

func TestApp_EscapeOnRootDoesNothing(t *testing.T) {
	m := newAppModel(screentest.Engine(t), screentest.User, Options{SkipSplash: true})
	if _, cmd := update(t, m, screentest.Special(tea.KeyEscape)); cmd != nil {
		t.Error("esc on the root screen should do nothing")
	}
}
