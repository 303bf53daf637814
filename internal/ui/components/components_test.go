package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	fired := ""
	action := func(name string) func() tea.Cmd {
		return func() tea.Cmd {
			fired = name
			return nil
		}
	}
	m := NewMenu([]MenuItem{
		{Label: "Off", Disabled: true},
		{Label: "One", Action: action("one")},
		{Label: "Off again", Disabled: true},
		{Label: "Two", Action: action("two")},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want first enabled item 1", m.Selected)
	}

	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 3 {
		t.Errorf("Selected = %d after down, want 3", m.Selected)
	}
	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 3 {
		t.Errorf("Selected = %d after down at bottom, want 3", m.Selected)
	}
	m, _ = m.Update(specialKey(tea.KeyEnter))
	if fired != "two" {
		t.Errorf("fired %q, want two", fired)
	}
	m, _ = m.Update(keyPress('k'))
	if m.Selected != 1 {
		t.Errorf("Selected = %d after k, want 1", m.Selected)
	}
}

func TestMultiChoice_Single(t *testing.T) {
	m := NewMultiChoice([]string{"3", "4", "5"}, false)
	m, _ = m.Update(specialKey(tea.KeyDown))
	m, _ = m.Update(specialKey(tea.KeyEnter))
	if !m.Submitted {
		t.Fatal("expected Enter to submit")
	}
	if got := m.Answer(); len(got) != 1 || got[0] != "4" {
		t.Errorf("Answer = %v, want [4]", got)
	}

	m = NewMultiChoice([]string{"3", "4", "5"}, false)
	m, _ = m.Update(keyPress('3'))
	if !m.Submitted || m.Answer()[0] != "5" {
		t.Errorf("number key should pick and submit, got %v submitted=%v", m.Answer(), m.Submitted)
	}
	m, _ = m.Update(specialKey(tea.KeyUp))
	if m.Cursor != 2 {
		t.Error("cursor moved after submit")
	}
}

func TestMultiChoice_Multi(t *testing.T) {
	m := NewMultiChoice([]string{"2", "3", "4"}, true)
	m, _ = m.Update(specialKey(tea.KeyEnter))
	if m.Submitted {
		t.Fatal("empty selection must not submit")
	}
	m, _ = m.Update(keyPress('1'))
	m, _ = m.Update(specialKey(tea.KeyDown))
	m, _ = m.Update(specialKey(tea.KeyDown))
	m, _ = m.Update(specialKey(tea.KeySpace))
	if m.Submitted {
		t.Fatal("toggling must not submit")
	}
	m, _ = m.Update(specialKey(tea.KeyEnter))
	if !m.Submitted {
		t.Fatal("expected submit")
	}
	got := m.Answer()
	if len(got) != 2 || got[0] != "2" || got[1] != "4" {
		t.Errorf("Answer = %v, want [2 4]", got)
	}
	if !strings.Contains(m.View(), "[x]") {
		t.Error("expected checked boxes in view")
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 10, 0},
		{5, 10, 0.5},
		{12, 10, 1},
		{3, 0, 0},
	}
	for _, tt := range tests {
		p := NewProgressBar("Tree", tt.done, tt.total, 40)
		if got := p.Fraction(); got != tt.want {
			t.Errorf("Fraction(%d/%d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
		if !strings.Contains(p.View(), "Tree") {
			t.Error("expected label in view")
		}
	}
}

func TestButton_ShortcutAndEnter(t *testing.T) {
	presses := 0
	b := NewButton("Leave", "y", func() tea.Cmd {
		presses++
		return nil
	})

	b, _, pressed := b.Update(specialKey(tea.KeyEnter))
	if pressed || presses != 0 {
		t.Error("enter should not press an unfocused button")
	}
	b, _, pressed = b.Update(keyPress('y'))
	if !pressed || presses != 1 {
		t.Error("shortcut should press the button")
	}
	b.Focused = true
	if _, _, pressed = b.Update(specialKey(tea.KeyEnter)); !pressed || presses != 2 {
		t.Error("enter should press a focused button")
	}
	if !strings.Contains(b.View(), "[Y] Leave") {
		t.Errorf("View = %q", b.View())
	}
}

func TestButtonRow_MovesFocus(t *testing.T) {
	fired := ""
	press := func(name string) func() tea.Cmd {
		return func() tea.Cmd {
			fired = name
			return nil
		}
	}
	r := NewButtonRow(
		NewButton("Stay", "n", press("stay")),
		NewButton("Go", "y", press("go")),
	)
	if r.Focus() != 0 || !r.Buttons[0].Focused || r.Buttons[1].Focused {
		t.Fatal("first button should start focused")
	}

	r, _, _ = r.Update(specialKey(tea.KeyRight))
	if r.Focus() != 1 {
		t.Errorf("Focus = %d after right, want 1", r.Focus())
	}
	r, _, _ = r.Update(specialKey(tea.KeyRight))
	if r.Focus() != 0 {
		t.Errorf("Focus = %d after wrapping, want 0", r.Focus())
	}
	r, _, _ = r.Update(specialKey(tea.KeyLeft))
	if _, _, pressed := r.Update(specialKey(tea.KeyEnter)); !pressed || fired != "go" {
		t.Errorf("enter fired %q, want go", fired)
	}
	if _, _, pressed := r.Update(keyPress('n')); !pressed || fired != "stay" {
		t.Errorf("shortcut fired %q, want stay", fired)
	}
	if view := r.View(); !strings.Contains(view, "Stay") || !strings.Contains(view, "Go") {
		t.Errorf("View = %q", view)
	}
}
