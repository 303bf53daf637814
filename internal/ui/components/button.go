package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/ui/theme"
)

// Button is a pressable choice. A focused button fires on Enter; its
// shortcut key fires it whether focused or not.
type Button struct {
	Label    string
	Shortcut string
	Focused  bool
	OnPress  func() tea.Cmd
}

// NewButton creates an unfocused button.
func NewButton(label, shortcut string, onPress func() tea.Cmd) Button {
	return Button{Label: label, Shortcut: shortcut, OnPress: onPress}
}

// Update fires OnPress on the shortcut key, or on Enter while focused.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || b.OnPress == nil {
		return b, nil, false
	}
	key := kmsg.String()
	if (b.Shortcut != "" && strings.EqualFold(key, b.Shortcut)) || (key == "enter" && b.Focused) {
		return b, b.OnPress(), true
	}
	return b, nil, false
}

// View renders the label with its shortcut, highlighted while focused.
func (b Button) View() string {
	label := b.Label
	if b.Shortcut != "" {
		label = "[" + strings.ToUpper(b.Shortcut) + "] " + label
	}
	if b.Focused {
		return theme.ButtonActive.Render("▸ " + label)
	}
	return theme.ButtonInactive.Render("  " + label)
}

// ButtonRow lays buttons out side by side with exactly one focused.
// Left, right and tab move the focus.
type ButtonRow struct {
	Buttons []Button
	focus   int
}

// NewButtonRow focuses the first button.
func NewButtonRow(buttons ...Button) ButtonRow {
	r := ButtonRow{Buttons: buttons}
	r.setFocus(0)
	return r
}

// Focus returns the index of the focused button.
func (r ButtonRow) Focus() int {
	return r.focus
}

func (r *ButtonRow) setFocus(i int) {
	if len(r.Buttons) == 0 {
		return
	}
	r.focus = (i + len(r.Buttons)) % len(r.Buttons)
	for j := range r.Buttons {
		r.Buttons[j].Focused = j == r.focus
	}
}

// Update moves the focus or presses a button. The bool reports whether a
// button fired.
func (r ButtonRow) Update(msg tea.Msg) (ButtonRow, tea.Cmd, bool) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "left", "h", "shift+tab":
			r.setFocus(r.focus - 1)
			return r, nil, false
		case "right", "l", "tab":
			r.setFocus(r.focus + 1)
			return r, nil, false
		}
	}
	for i := range r.Buttons {
		var cmd tea.Cmd
		var pressed bool
		r.Buttons[i], cmd, pressed = r.Buttons[i].Update(msg)
		if pressed {
			return r, cmd, true
		}
	}
	return r, nil, false
}

func (r ButtonRow) View() string {
	views := make([]string, 0, 2*len(r.Buttons))
	for i, b := range r.Buttons {
		if i > 0 {
			views = append(views, "   ")
		}
		views = append(views, b.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, views...)
}
