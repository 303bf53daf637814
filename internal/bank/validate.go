package bank

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const (
	maxPromptLen = 500
	minChoices   = 2
	maxChoices   = 6
)

// validateItem rejects items a learner could not answer correctly: missing
// text, malformed choices, answers that are not among the choices, and
// arithmetic the prompt contradicts.
func validateItem(it Item) error {
	prompt := strings.TrimSpace(it.Prompt)
	if prompt == "" {
		return fmt.Errorf("empty prompt")
	}
	if len(prompt) > maxPromptLen {
		return fmt.Errorf("prompt exceeds %d characters", maxPromptLen)
	}
	for _, a := range it.Answer {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("empty answer entry")
		}
	}

	switch it.Format {
	case FormatText:
		if len(it.Answer) != 1 {
			return fmt.Errorf("text item needs exactly one answer, got %d", len(it.Answer))
		}
		return checkArithmetic(prompt, it.Answer[0])
	case FormatMultipleChoice:
		if err := validateChoices(it.Choices); err != nil {
			return err
		}
		if len(it.Answer) != 1 {
			return fmt.Errorf("multiple choice item needs exactly one answer, got %d", len(it.Answer))
		}
		if !slices.Contains(trimAll(it.Choices), strings.TrimSpace(it.Answer[0])) {
			return fmt.Errorf("answer %q is not a choice", it.Answer[0])
		}
	case FormatMultiSelect:
		if err := validateChoices(it.Choices); err != nil {
			return err
		}
		if len(it.Answer) == 0 {
			return fmt.Errorf("multi-select item needs at least one answer")
		}
		choices := trimAll(it.Choices)
		for _, a := range it.Answer {
			if !slices.Contains(choices, strings.TrimSpace(a)) {
				return fmt.Errorf("answer %q is not a choice", a)
			}
		}
	default:
		return fmt.Errorf("unknown format %q", it.Format)
	}
	return nil
}

func validateChoices(choices []string) error {
	if len(choices) < minChoices || len(choices) > maxChoices {
		return fmt.Errorf("need %d to %d choices, got %d", minChoices, maxChoices, len(choices))
	}
	seen := make(map[string]bool, len(choices))
	for _, c := range trimAll(choices) {
		if c == "" {
			return fmt.Errorf("empty choice")
		}
		if seen[c] {
			return fmt.Errorf("duplicate choice %q", c)
		}
		seen[c] = true
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

var (
	// "3/4 + 1/4"
	fractionExprRe = regexp.MustCompile(`(\d+)\s*/\s*(\d+)\s*([+\-*])\s*(\d+)\s*/\s*(\d+)`)

	// "12 + 7", "6 * 8", "9 x 3"; a slash right next to a number is a
	// fraction, not an operand.
	intExprRe = regexp.MustCompile(`(?:^|[^\d/.])(\d+)\s*([+\-*x])\s*(\d+)(?:[^\d/.]|$)`)

	// Division needs spaces around the slash so "3/4" stays a fraction.
	intDivRe = regexp.MustCompile(`(\d+)\s+/\s+(\d+)`)
)

// checkArithmetic recomputes a single binary operation found in the prompt
// and compares it with answer. Prompts without one pass.
func checkArithmetic(prompt, answer string) error {
	want, ok := computeFraction(prompt)
	if !ok {
		want, ok = computeInteger(prompt)
	}
	if !ok {
		return nil
	}
	if normalizeNumber(answer) != want {
		return fmt.Errorf("prompt computes to %s but answer is %q", want, answer)
	}
	return nil
}

func computeFraction(prompt string) (string, bool) {
	m := fractionExprRe.FindStringSubmatch(prompt)
	if m == nil {
		return "", false
	}
	an, _ := strconv.ParseInt(m[1], 10, 64)
	ad, _ := strconv.ParseInt(m[2], 10, 64)
	bn, _ := strconv.ParseInt(m[4], 10, 64)
	bd, _ := strconv.ParseInt(m[5], 10, 64)
	if ad == 0 || bd == 0 {
		return "", false
	}

	var n, d int64
	switch m[3] {
	case "+":
		n, d = an*bd+bn*ad, ad*bd
	case "-":
		n, d = an*bd-bn*ad, ad*bd
	case "*":
		n, d = an*bn, ad*bd
	}
	return formatFraction(n, d), true
}

func computeInteger(prompt string) (string, bool) {
	if m := intExprRe.FindStringSubmatch(prompt); m != nil {
		a, _ := strconv.ParseInt(m[1], 10, 64)
		b, _ := strconv.ParseInt(m[3], 10, 64)
		switch m[2] {
		case "+":
			return strconv.FormatInt(a+b, 10), true
		case "-":
			return strconv.FormatInt(a-b, 10), true
		default:
			return strconv.FormatInt(a*b, 10), true
		}
	}
	if m := intDivRe.FindStringSubmatch(prompt); m != nil {
		a, _ := strconv.ParseInt(m[1], 10, 64)
		b, _ := strconv.ParseInt(m[2], 10, 64)
		if b == 0 {
			return "", false
		}
		return formatFraction(a, b), true
	}
	return "", false
}

// normalizeNumber reduces fraction answers so "2/4" and "1/2" compare equal.
// Anything else is returned trimmed.
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return s
	}
	n, err1 := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
	d, err2 := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return s
	}
	return formatFraction(n, d)
}

func formatFraction(n, d int64) string {
	if d < 0 {
		n, d = -n, -d
	}
	g := gcd(abs(n), d)
	if g > 1 {
		n, d = n/g, d/g
	}
	if d == 1 {
		return strconv.FormatInt(n, 10)
	}
	return fmt.Sprintf("%d/%d", n, d)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
