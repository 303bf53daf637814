package hearts

import (
	"errors"
	"time"

	"github.com/abhisek/pathwise/internal/mastery"
)

// Defaults for the life economy.
const (
	DefaultMax               = 5
	DefaultRefillDelay       = 20 * time.Minute
	DefaultRecoveryPassScore = 50
)

// ErrOutOfLives is returned when a graded answer is attempted with no hearts left.
var ErrOutOfLives = errors.New("out of lives")

// Config holds the tunables of the life economy.
type Config struct {
	Max               int
	RefillDelay       time.Duration
	RecoveryPassScore int
}

// DefaultConfig returns five hearts, a 20 minute refill and a 50% recovery bar.
func DefaultConfig() Config {
	return Config{
		Max:               DefaultMax,
		RefillDelay:       DefaultRefillDelay,
		RecoveryPassScore: DefaultRecoveryPassScore,
	}
}

// State is a learner's life counter. RefillAt is set only while Current is 0;
// the zero time means no refill is pending.
type State struct {
	Current  int       `json:"current"`
	Max      int       `json:"max"`
	RefillAt time.Time `json:"refill_at,omitzero"`
}

// Depleted reports whether no hearts are left.
func (s State) Depleted() bool {
	return s.Current <= 0
}

// Full reports whether every heart is available.
func (s State) Full() bool {
	return s.Current >= s.Max
}

// Transition describes how an operation moved the economy across the
// depleted boundary.
type Transition int

const (
	NoChange Transition = iota
	EnteredDepleted
	Refilled
)

func (t Transition) String() string {
	switch t {
	case EnteredDepleted:
		return "depleted"
	case Refilled:
		return "refilled"
	default:
		return "none"
	}
}

// RefillReason says what cleared a depleted state.
type RefillReason string

const (
	ReasonTimer    RefillReason = "timer"
	ReasonRecovery RefillReason = "recovery_quiz"
)

// Economy applies the life rules to State values. Timer expiry is evaluated
// lazily against the supplied time; there is no background timer.
type Economy struct {
	cfg Config
}

// NewEconomy creates an economy, substituting defaults for unset fields.
func NewEconomy(cfg Config) *Economy {
	def := DefaultConfig()
	if cfg.Max <= 0 {
		cfg.Max = def.Max
	}
	if cfg.RefillDelay <= 0 {
		cfg.RefillDelay = def.RefillDelay
	}
	if cfg.RecoveryPassScore <= 0 {
		cfg.RecoveryPassScore = def.RecoveryPassScore
	}
	return &Economy{cfg: cfg}
}

// Config returns the effective configuration.
func (e *Economy) Config() Config {
	return e.cfg
}

// NewState returns a full state for a learner seen for the first time.
func (e *Economy) NewState() State {
	return State{Current: e.cfg.Max, Max: e.cfg.Max}
}

// Refresh normalizes s against the configured max and applies a pending
// refill whose deadline has passed.
func (e *Economy) Refresh(s *State, now time.Time) Transition {
	if s.Max != e.cfg.Max {
		s.Max = e.cfg.Max
	}
	s.Current = max(0, min(s.Max, s.Current))

	if s.Current > 0 {
		s.RefillAt = time.Time{}
		return NoChange
	}
	if s.RefillAt.IsZero() {
		// Depleted without a deadline; schedule one so the learner is not stuck.
		s.RefillAt = now.Add(e.cfg.RefillDelay)
		return NoChange
	}
	if !now.Before(s.RefillAt) {
		s.Current = s.Max
		s.RefillAt = time.Time{}
		return Refilled
	}
	return NoChange
}

// CheckCanAnswer fails with ErrOutOfLives while s is depleted.
func (e *Economy) CheckCanAnswer(s *State, now time.Time) (Transition, error) {
	tr := e.Refresh(s, now)
	if s.Depleted() {
		return tr, ErrOutOfLives
	}
	return tr, nil
}

// RecordWrongAnswer takes one heart. Reaching zero schedules the refill at
// now + RefillDelay, overwriting any earlier deadline.
func (e *Economy) RecordWrongAnswer(s *State, now time.Time) (Transition, error) {
	tr := e.Refresh(s, now)
	if s.Depleted() {
		return tr, ErrOutOfLives
	}
	s.Current--
	if s.Current == 0 {
		s.RefillAt = now.Add(e.cfg.RefillDelay)
		return EnteredDepleted, nil
	}
	return tr, nil
}

// RecoveryQuizResult applies a recovery quiz score. A passing score refills
// every heart at once; a failing one changes nothing.
func (e *Economy) RecoveryQuizResult(s *State, score int, now time.Time) (Transition, bool) {
	tr := e.Refresh(s, now)
	if tr == Refilled {
		return tr, mastery.Passed(score, e.cfg.RecoveryPassScore)
	}
	if !mastery.Passed(score, e.cfg.RecoveryPassScore) {
		return tr, false
	}
	wasDepleted := s.Depleted()
	s.Current = s.Max
	s.RefillAt = time.Time{}
	if wasDepleted {
		return Refilled, true
	}
	return NoChange, true
}

// Remaining returns the time left until the pending refill, or 0 when no
// refill is pending.
func (e *Economy) Remaining(s State, now time.Time) time.Duration {
	if !s.Depleted() || s.RefillAt.IsZero() || !now.Before(s.RefillAt) {
		return 0
	}
	return s.RefillAt.Sub(now)
}
