package bank

import (
	"fmt"
	"strings"

	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/skillgraph"
)

// ItemBatchSchema is the response shape requested from the model.
var ItemBatchSchema = &llm.Schema{
	Name:        "practice-items",
	Description: "A batch of practice items for one lesson of a K-5 math curriculum",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"prompt": map[string]any{
							"type":        "string",
							"description": "The question shown to the learner, in plain ASCII text",
						},
						"format": map[string]any{
							"type":        "string",
							"enum":        []any{"text", "multiple_choice", "multi_select"},
							"description": "text: the learner types the answer; multiple_choice: pick one; multi_select: pick every correct choice",
						},
						"choices": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "2 to 6 options for multiple_choice and multi_select. Empty array for text.",
						},
						"answer": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    1,
							"description": "The correct answer. One entry for text and multiple_choice (the option text), one entry per correct option for multi_select.",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "A short worked solution a child can follow",
						},
					},
					"required":             []any{"prompt", "format", "choices", "answer", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"items"},
		"additionalProperties": false,
	},
}

const generatorSystemPrompt = `You write math practice items for children from kindergarten to grade 5.

Rules:
- Every item must practise the given lesson at the given grade.
- Use plain ASCII text for all math. Use / for fractions, * for multiplication.
- Answers must be correct and in simplest form (reduced fractions, no trailing zeros).
- Use "text" for computation the child can type as a single number or word.
- Use "multiple_choice" for concepts and comparisons; distractors should reflect common mistakes.
- Use "multi_select" only when more than one option is genuinely correct.
- The answer of a choice item must be copied exactly from its choices.
- Do not repeat any prompt from the "already used" list.`

func buildGeneratorMessage(node skillgraph.Node, kind string, count int, prior []string, maxPrior int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lesson: %s\n", node.Name)
	fmt.Fprintf(&b, "Description: %s\n", node.Description)
	fmt.Fprintf(&b, "Grade: %s\n", skillgraph.GradeLabel(node.GradeLevel))
	fmt.Fprintf(&b, "Subject: %s\n", node.Subject.DisplayName())
	fmt.Fprintf(&b, "Write %d %ss.\n", count, kind)

	b.WriteString("\nAlready used:\n")
	if len(prior) == 0 {
		b.WriteString("None")
		return b.String()
	}
	if maxPrior > 0 && len(prior) > maxPrior {
		prior = prior[len(prior)-maxPrior:]
	}
	for i, p := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n")
}
