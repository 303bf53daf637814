package play

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/ui/components"
)

// answerInput is a typed answer or a choice list, depending on the item's
// format.
type answerInput struct {
	format bank.Format
	text   components.TextInput
	choice components.MultiChoice
}

func newAnswerInput(format bank.Format, choices []string) answerInput {
	a := answerInput{format: format}
	switch format {
	case bank.FormatMultipleChoice:
		a.choice = components.NewMultiChoice(choices, false)
	case bank.FormatMultiSelect:
		a.choice = components.NewMultiChoice(choices, true)
	default:
		a.text = components.NewTextInput("Type your answer...", 40)
	}
	return a
}

func (a answerInput) typed() bool {
	return a.format != bank.FormatMultipleChoice && a.format != bank.FormatMultiSelect
}

func (a answerInput) Init() tea.Cmd {
	if a.typed() {
		return a.text.Init()
	}
	return nil
}

// Update feeds a key to the input. It reports true when the learner has
// committed to an answer.
func (a answerInput) Update(msg tea.Msg) (answerInput, tea.Cmd, bool) {
	if a.typed() {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "enter" {
			return a, nil, strings.TrimSpace(a.text.Value()) != ""
		}
		var cmd tea.Cmd
		a.text, cmd = a.text.Update(msg)
		return a, cmd, false
	}
	var cmd tea.Cmd
	a.choice, cmd = a.choice.Update(msg)
	return a, cmd, a.choice.Submitted
}

// Answer returns the learner's answer in the form the engine grades.
func (a answerInput) Answer() []string {
	if a.typed() {
		v := strings.TrimSpace(a.text.Value())
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return a.choice.Answer()
}

// Retry reopens a choice list whose answer could not be recorded.
func (a *answerInput) Retry() {
	a.choice.Submitted = false
}

// Reveal shows the verdict on the input.
func (a *answerInput) Reveal(correct bool, answer string) {
	if a.typed() {
		a.text.Submit(correct)
		return
	}
	a.choice.Reveal(strings.Split(answer, ", "))
}

func (a answerInput) View(width int) string {
	if a.typed() {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, "Answer: "+a.text.View())
	}
	hint := "Pick with 1-9 or arrows + Enter"
	if a.format == bank.FormatMultiSelect {
		hint = "Toggle with Space or 1-9, then Enter"
	}
	block := a.choice.View() + "\n" + lipgloss.NewStyle().Faint(true).Render(hint)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}
