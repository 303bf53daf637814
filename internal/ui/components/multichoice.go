package components

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/ui/theme"
)

// MultiChoice lets the learner pick one option, or several when Multi is
// set. Space toggles an option in multi mode; Enter confirms.
type MultiChoice struct {
	Options   []string
	Multi     bool
	Cursor    int
	Checked   map[int]bool
	Submitted bool

	correct []string
}

// NewMultiChoice creates a selector over options.
func NewMultiChoice(options []string, multi bool) MultiChoice {
	return MultiChoice{
		Options: options,
		Multi:   multi,
		Checked: make(map[int]bool),
	}
}

func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles navigation and selection. Number keys jump to an option;
// in single mode they also confirm it.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "space", " ":
		if m.Multi {
			m.Checked[m.Cursor] = !m.Checked[m.Cursor]
		}
	case "enter":
		if !m.Multi || len(m.Answer()) > 0 {
			m.Submitted = true
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(m.Options) {
				m.Cursor = i
				if m.Multi {
					m.Checked[i] = !m.Checked[i]
				} else {
					m.Submitted = true
				}
			}
		}
	}
	return m, nil
}

// Answer returns the picked options in display order.
func (m MultiChoice) Answer() []string {
	if !m.Multi {
		if m.Cursor < 0 || m.Cursor >= len(m.Options) {
			return nil
		}
		return []string{m.Options[m.Cursor]}
	}
	var out []string
	for i, opt := range m.Options {
		if m.Checked[i] {
			out = append(out, opt)
		}
	}
	return out
}

// Reveal marks the correct options once the answer has been graded.
func (m *MultiChoice) Reveal(correct []string) {
	m.Submitted = true
	m.correct = correct
}

func (m MultiChoice) View() string {
	picked := m.Answer()
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Submitted {
			prefix = "▸ "
		}
		box := ""
		if m.Multi {
			box = "[ ] "
			if m.Checked[i] {
				box = "[x] "
			}
		}
		line := fmt.Sprintf("%s%d) %s%s", prefix, i+1, box, opt)

		switch {
		case m.correct != nil && slices.Contains(m.correct, opt):
			b.WriteString(theme.Correct.Render(line))
		case m.correct != nil && slices.Contains(picked, opt):
			b.WriteString(theme.Incorrect.Render(line))
		case m.correct != nil:
			b.WriteString(theme.Locked.Render(line))
		case i == m.Cursor:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
