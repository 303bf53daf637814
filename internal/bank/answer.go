package bank

import (
	"strconv"
	"strings"
)

// Check reports whether answer matches the item's correct answer.
//
// Matching is exact after trimming surrounding whitespace. Multi-select
// answers are compared as sets: order and repeated entries are ignored.
func (it Item) Check(answer []string) bool {
	if it.Format == FormatMultiSelect {
		return sameSet(it.Answer, answer)
	}
	if len(answer) != 1 || len(it.Answer) == 0 {
		return false
	}
	got := strings.TrimSpace(answer[0])
	if got == "" {
		return false
	}
	return got == strings.TrimSpace(it.Answer[0])
}

// DisplayAnswer renders the correct answer for feedback.
func (it Item) DisplayAnswer() string {
	return strings.Join(it.Answer, ", ")
}

func sameSet(want, got []string) bool {
	a := toSet(want)
	b := toSet(got)
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for v := range a {
		if !b[v] {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = true
		}
	}
	return set
}

// ChoiceAt resolves a 1-based choice number typed by the learner into the
// choice text. Inputs that are not a valid choice number are returned as is.
func (it Item) ChoiceAt(input string) string {
	input = strings.TrimSpace(input)
	if len(it.Choices) == 0 {
		return input
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(it.Choices) {
		return input
	}
	return it.Choices[n-1]
}

// ParseAnswer turns raw learner input into an answer slice. Multi-select
// input is split on commas; choice numbers are resolved to choice text.
func (it Item) ParseAnswer(input string) []string {
	if it.Format != FormatMultiSelect {
		return []string{it.ChoiceAt(input)}
	}
	var out []string
	for _, part := range strings.Split(input, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, it.ChoiceAt(p))
		}
	}
	return out
}
