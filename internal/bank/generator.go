package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/skillgraph"
)

// ErrNoValidItems is returned when every generated item failed validation.
var ErrNoValidItems = errors.New("generator produced no valid items")

// GeneratorConfig controls the LLM-backed bank.
type GeneratorConfig struct {
	// BatchSize is the number of exercises generated for a lesson.
	BatchSize int

	MaxTokens   int
	Temperature float64

	// MaxPriorPrompts caps how many earlier prompts for a topic are listed
	// in the request so the model avoids repeating them.
	MaxPriorPrompts int

	Logger *slog.Logger
}

// DefaultGeneratorConfig returns the recommended settings.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		BatchSize:       5,
		MaxTokens:       2048,
		Temperature:     0.7,
		MaxPriorPrompts: 20,
	}
}

// Generator is a Bank whose content is written by a language model for the
// nodes of a graph. Exercises are generated once per lesson and kept, so a
// lesson run sees a stable pool; quiz questions are drawn fresh for every
// quiz.
type Generator struct {
	provider llm.Provider
	graph    *skillgraph.Graph
	cfg      GeneratorConfig

	mu        sync.Mutex
	exercises map[string][]Exercise
	prior     map[string][]string
	seq       map[string]int
}

// NewGenerator creates a generator for the nodes of g.
func NewGenerator(provider llm.Provider, g *skillgraph.Graph, cfg GeneratorConfig) *Generator {
	def := DefaultGeneratorConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.MaxPriorPrompts <= 0 {
		cfg.MaxPriorPrompts = def.MaxPriorPrompts
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Generator{
		provider:  provider,
		graph:     g,
		cfg:       cfg,
		exercises: make(map[string][]Exercise),
		prior:     make(map[string][]string),
		seq:       make(map[string]int),
	}
}

// ExercisesForLesson generates the lesson's exercises on first use. Nodes
// outside the graph have no content.
func (g *Generator) ExercisesForLesson(ctx context.Context, lessonID string) ([]Exercise, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cached, ok := g.exercises[lessonID]; ok {
		return cloneExercises(cached), nil
	}
	node, ok := g.graph.Node(lessonID)
	if !ok {
		return nil, nil
	}

	items, err := g.generate(llm.WithPurpose(ctx, "lesson-exercises"), node, "exercise", g.cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	out := make([]Exercise, 0, len(items))
	for _, it := range items {
		it.ID = g.nextID(lessonID, "ex")
		out = append(out, Exercise{Item: it, LessonID: lessonID})
	}
	g.exercises[lessonID] = out
	return cloneExercises(out), nil
}

// QuizQuestions generates up to count new questions for the topic.
func (g *Generator) QuizQuestions(ctx context.Context, topicID string, count int) ([]Question, error) {
	if count <= 0 {
		return nil, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.graph.Node(topicID)
	if !ok {
		return nil, nil
	}
	items, err := g.generate(llm.WithPurpose(ctx, "quiz-questions"), node, "quiz question", count)
	if err != nil {
		return nil, err
	}
	if len(items) > count {
		items = items[:count]
	}
	out := make([]Question, 0, len(items))
	for _, it := range items {
		it.ID = g.nextID(topicID, "q")
		out = append(out, Question{Item: it, TopicID: topicID})
	}
	return out, nil
}

func (g *Generator) nextID(nodeID, kind string) string {
	g.seq[nodeID]++
	return fmt.Sprintf("%s/gen-%s-%d", nodeID, kind, g.seq[nodeID])
}

// generatedItem is one entry of the model's response.
type generatedItem struct {
	Prompt      string   `json:"prompt"`
	Format      string   `json:"format"`
	Choices     []string `json:"choices"`
	Answer      []string `json:"answer"`
	Explanation string   `json:"explanation"`
}

type generatedBatch struct {
	Items []generatedItem `json:"items"`
}

// generate asks for count items and keeps the ones that pass validation.
// The caller holds g.mu.
func (g *Generator) generate(ctx context.Context, node skillgraph.Node, kind string, count int) ([]Item, error) {
	req := llm.Request{
		System:      generatorSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildGeneratorMessage(node, kind, count, g.prior[node.ID], g.cfg.MaxPriorPrompts)}},
		Schema:      ItemBatchSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate %ss for %q: %w", kind, node.ID, err)
	}

	var batch generatedBatch
	if err := json.Unmarshal(resp.Content, &batch); err != nil {
		return nil, fmt.Errorf("parse generated %ss: %w", kind, err)
	}

	var items []Item
	for i, raw := range batch.Items {
		it := Item{
			Prompt:      raw.Prompt,
			Format:      Format(raw.Format),
			Choices:     raw.Choices,
			Answer:      raw.Answer,
			Explanation: raw.Explanation,
		}
		if len(it.Choices) == 0 {
			it.Choices = nil
		}
		if err := validateItem(it); err != nil {
			g.cfg.Logger.Debug("dropping generated item",
				"node", node.ID, "index", i, "error", err)
			continue
		}
		items = append(items, it)
		g.prior[node.ID] = append(g.prior[node.ID], it.Prompt)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s for %q: %w", kind, node.ID, ErrNoValidItems)
	}
	return items, nil
}

func cloneExercises(in []Exercise) []Exercise {
	out := make([]Exercise, len(in))
	copy(out, in)
	return out
}
