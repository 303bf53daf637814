package progress

import (
	"fmt"
	"maps"
	"time"

	"github.com/abhisek/pathwise/internal/mastery"
	"github.com/abhisek/pathwise/internal/skillgraph"
)

// Tracker owns one learner's progress over a graph. It is the only code
// that changes NodeProgress records. A Tracker is not safe for concurrent use.
type Tracker struct {
	graph   *skillgraph.Graph
	nodes   map[string]NodeProgress
	profile Profile
	dirty   map[string]bool
}

// NewTracker loads stored rows for a learner. Rows for nodes missing from
// the graph are ignored. Nodes the learner has never engaged get a fresh
// record, current for entry nodes and locked otherwise, and are reported by
// Dirty until persisted.
func NewTracker(g *skillgraph.Graph, profile Profile, rows []NodeProgress, now time.Time) *Tracker {
	t := &Tracker{
		graph:   g,
		nodes:   make(map[string]NodeProgress, g.Len()),
		profile: profile,
		dirty:   make(map[string]bool),
	}
	for _, r := range rows {
		if g.Has(r.NodeID) {
			t.nodes[r.NodeID] = r
		}
	}
	for _, n := range g.Nodes() {
		if _, ok := t.nodes[n.ID]; ok {
			continue
		}
		status := StatusLocked
		if n.IsEntry() {
			status = StatusCurrent
		}
		t.nodes[n.ID] = NodeProgress{NodeID: n.ID, Status: status, UpdatedAt: now}
		t.dirty[n.ID] = true
	}
	t.reconcile(t.nodes, t.dirty, now)
	return t
}

// Graph returns the tracker's graph.
func (t *Tracker) Graph() *skillgraph.Graph {
	return t.graph
}

// Profile returns the learner profile.
func (t *Tracker) Profile() Profile {
	return t.profile
}

// Progress returns the record for nodeID.
func (t *Tracker) Progress(nodeID string) (NodeProgress, bool) {
	p, ok := t.nodes[nodeID]
	return p, ok
}

// All returns every record in graph declaration order.
func (t *Tracker) All() []NodeProgress {
	out := make([]NodeProgress, 0, len(t.nodes))
	for _, n := range t.graph.Nodes() {
		out = append(out, t.nodes[n.ID])
	}
	return out
}

// Dirty returns the records changed since the tracker was created or last
// marked clean, in declaration order.
func (t *Tracker) Dirty() []NodeProgress {
	var out []NodeProgress
	for _, n := range t.graph.Nodes() {
		if t.dirty[n.ID] {
			out = append(out, t.nodes[n.ID])
		}
	}
	return out
}

// MarkClean forgets pending changes after they were persisted.
func (t *Tracker) MarkClean() {
	clear(t.dirty)
}

// Completed returns the set of completed node IDs.
func (t *Tracker) Completed() map[string]bool {
	done := make(map[string]bool)
	for id, p := range t.nodes {
		if p.Status == StatusCompleted {
			done[id] = true
		}
	}
	return done
}

// TotalStars sums stars across all nodes.
func (t *Tracker) TotalStars() int {
	total := 0
	for _, p := range t.nodes {
		total += p.Stars
	}
	return total
}

// CanAttempt returns nil if nodeID is known and not blocked by an
// incomplete prerequisite.
func (t *Tracker) CanAttempt(nodeID string) error {
	if !t.graph.Has(nodeID) {
		return fmt.Errorf("%w: %q", ErrUnknownNode, nodeID)
	}
	p := t.nodes[nodeID]
	if p.Status == StatusLocked {
		if missing := t.graph.MissingPrerequisites(nodeID, t.Completed()); len(missing) > 0 {
			return fmt.Errorf("%w: %q needs %v", ErrPrerequisitesNotMet, nodeID, missing)
		}
	}
	return nil
}

// RecordAttempt counts a scored attempt that did not pass. Only the
// attempt count changes; status, best score and stars stay as they were.
func (t *Tracker) RecordAttempt(nodeID string, score int, now time.Time) (Result, error) {
	if err := t.CanAttempt(nodeID); err != nil {
		return Result{}, err
	}
	p := t.nodes[nodeID]
	p.Attempts++
	p.UpdatedAt = now
	t.nodes[nodeID] = p
	t.dirty[nodeID] = true

	return Result{
		NodeID:          nodeID,
		Score:           mastery.Clamp(score),
		Stars:           p.Stars,
		PreviousBest:    p.BestScore,
		BestScore:       p.BestScore,
		Attempts:        p.Attempts,
		UnlockedNodeIDs: []string{},
	}, nil
}

// CompleteNode records a scored attempt at nodeID.
//
// A locked node whose prerequisites are all complete is treated as current.
// When the node is already completed and score does not beat BestScore, only
// the attempt count changes; the returned Result has no unlocks and the
// error is ErrInvalidTransition. Otherwise the node becomes completed,
// best score and stars are raised, and every locked node whose prerequisites
// are now all complete becomes current. Unlocks are reported in graph
// declaration order. On any other error nothing changes.
func (t *Tracker) CompleteNode(nodeID string, score int, now time.Time) (Result, error) {
	if err := t.CanAttempt(nodeID); err != nil {
		return Result{}, err
	}
	score = mastery.Clamp(score)

	nodes := maps.Clone(t.nodes)
	dirty := maps.Clone(t.dirty)
	profile := t.profile

	p := nodes[nodeID]
	res := Result{
		NodeID:          nodeID,
		Score:           score,
		StarsAwarded:    mastery.ScoreToStars(score),
		PreviousBest:    p.BestScore,
		UnlockedNodeIDs: []string{},
	}

	if p.Status == StatusCompleted && score <= p.BestScore {
		p.Attempts++
		p.UpdatedAt = now
		nodes[nodeID] = p
		dirty[nodeID] = true

		res.Stars = p.Stars
		res.BestScore = p.BestScore
		res.Attempts = p.Attempts
		t.nodes, t.dirty = nodes, dirty
		return res, fmt.Errorf("%w: %q best %d, got %d", ErrInvalidTransition, nodeID, p.BestScore, score)
	}

	first := p.Status != StatusCompleted
	p.Status = StatusCompleted
	p.BestScore = max(p.BestScore, score)
	p.Stars = max(p.Stars, res.StarsAwarded)
	p.Attempts++
	p.UpdatedAt = now
	if first || p.CompletedAt.IsZero() {
		p.CompletedAt = now
	}
	nodes[nodeID] = p
	dirty[nodeID] = true

	res.Improved = true
	res.FirstCompletion = first
	res.Stars = p.Stars
	res.BestScore = p.BestScore
	res.Attempts = p.Attempts
	res.MasteryDelta = mastery.Delta(res.PreviousBest, score)
	res.UnlockedNodeIDs = append(res.UnlockedNodeIDs, t.reconcile(nodes, dirty, now)...)

	if first {
		n, _ := t.graph.Node(nodeID)
		profile.XP += n.XPReward
		res.XPAwarded = n.XPReward
	}
	profile.touchStreak(now)

	t.nodes, t.dirty, t.profile = nodes, dirty, profile
	return res, nil
}

// Reconcile promotes locked nodes whose prerequisites are all completed,
// for example after the graph gained nodes. It returns the promoted IDs in
// declaration order.
func (t *Tracker) Reconcile(now time.Time) []string {
	return t.reconcile(t.nodes, t.dirty, now)
}

func (t *Tracker) reconcile(nodes map[string]NodeProgress, dirty map[string]bool, now time.Time) []string {
	done := make(map[string]bool)
	for id, p := range nodes {
		if p.Status == StatusCompleted {
			done[id] = true
		}
	}
	var unlocked []string
	for _, n := range t.graph.Nodes() {
		p := nodes[n.ID]
		if p.Status != StatusLocked || !t.graph.IsUnlocked(n.ID, done) {
			continue
		}
		p.Status = StatusCurrent
		p.UpdatedAt = now
		nodes[n.ID] = p
		dirty[n.ID] = true
		unlocked = append(unlocked, n.ID)
	}
	return unlocked
}
