package progress

import (
	"errors"
	"time"
)

// Status is a node's state for one learner.
type Status string

const (
	StatusLocked    Status = "locked"
	StatusCurrent   Status = "current"
	StatusCompleted Status = "completed"
)

// Errors returned by Tracker.
var (
	ErrUnknownNode         = errors.New("unknown node")
	ErrPrerequisitesNotMet = errors.New("prerequisites not met")
	ErrInvalidTransition   = errors.New("node already completed and score did not improve")
)

// NodeProgress is a learner's record for one node. BestScore and Stars never
// decrease.
type NodeProgress struct {
	NodeID      string    `json:"node_id"`
	Status      Status    `json:"status"`
	Stars       int       `json:"stars"`
	Attempts    int       `json:"attempts"`
	BestScore   int       `json:"best_score"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Profile carries a learner's totals across the tree.
type Profile struct {
	UserID        string `json:"user_id"`
	XP            int    `json:"xp"`
	StreakDays    int    `json:"streak_days"`
	LastActiveDay string `json:"last_active_day,omitempty"` // YYYY-MM-DD, UTC
}

// Result describes the outcome of CompleteNode.
type Result struct {
	NodeID       string `json:"node_id"`
	Score        int    `json:"score"`
	StarsAwarded int    `json:"stars_awarded"`
	Stars        int    `json:"stars"`
	PreviousBest int    `json:"previous_best"`
	BestScore    int    `json:"best_score"`
	MasteryDelta int    `json:"mastery_delta"`
	Attempts     int    `json:"attempts"`

	// Improved is false when the node was already completed and the score
	// did not beat the best; only the attempt count changed.
	Improved        bool     `json:"improved"`
	FirstCompletion bool     `json:"first_completion"`
	XPAwarded       int      `json:"xp_awarded"`
	UnlockedNodeIDs []string `json:"unlocked_node_ids"`
}
