package engine

import (
	"context"

	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/skillgraph"
)

// NodeView pairs a graph node with the learner's record for it.
type NodeView struct {
	Node     skillgraph.Node
	Progress progress.NodeProgress
}

// TreeView is a learner's whole skill tree in declaration order.
type TreeView struct {
	UserID     string
	Nodes      []NodeView
	Profile    progress.Profile
	Streak     int
	Hearts     HeartsView
	Completed  int
	TotalStars int
}

// Current returns the nodes the learner can attempt next.
func (t TreeView) Current() []NodeView {
	var out []NodeView
	for _, n := range t.Nodes {
		if n.Progress.Status == progress.StatusCurrent {
			out = append(out, n)
		}
	}
	return out
}

// Tree returns the learner's skill tree. Lazy changes found while loading,
// such as an expired refill timer, are persisted.
func (e *Engine) Tree(ctx context.Context, userID string) (TreeView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().UTC()
	l, err := e.load(ctx, userID, now)
	if err != nil {
		return TreeView{}, err
	}
	if err := e.commit(ctx, l, nil, now); err != nil {
		return TreeView{}, err
	}

	view := TreeView{
		UserID:     userID,
		Profile:    l.tracker.Profile(),
		Streak:     l.tracker.Profile().ActiveStreak(now),
		Hearts:     e.heartsView(l.hearts, now),
		Completed:  len(l.tracker.Completed()),
		TotalStars: l.tracker.TotalStars(),
	}
	for _, n := range e.graph.Nodes() {
		p, _ := l.tracker.Progress(n.ID)
		view.Nodes = append(view.Nodes, NodeView{Node: n, Progress: p})
	}
	return view, nil
}

// Hearts returns the learner's life counter, applying an expired refill.
func (e *Engine) Hearts(ctx context.Context, userID string) (HeartsView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().UTC()
	l, err := e.load(ctx, userID, now)
	if err != nil {
		return HeartsView{}, err
	}
	if err := e.commit(ctx, l, nil, now); err != nil {
		return HeartsView{}, err
	}
	return e.heartsView(l.hearts, now), nil
}
