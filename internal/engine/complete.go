package engine

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/pathwise/internal/notify"
	"github.com/abhisek/pathwise/internal/progress"
)

const opCompleteNode = "complete_node"

// CompleteNode records a scored attempt at nodeID and unlocks every node
// whose prerequisites are now complete, all in one commit.
//
// Repeating a completed node without beating its best score only counts the
// attempt: the result has no unlocks and the error is ErrInvalidTransition.
// A non-empty opID makes the call idempotent; a retry returns the stored
// outcome without applying anything.
func (e *Engine) CompleteNode(ctx context.Context, opID, userID, nodeID string, score int) (progress.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var prior progress.Result
	if done, err := e.replay(ctx, opID, userID, opCompleteNode, &prior); done {
		return prior, err
	}

	now := e.now().UTC()
	l, err := e.load(ctx, userID, now)
	if err != nil {
		return progress.Result{}, err
	}
	res, err := e.completeNode(l, nodeID, score, now)
	if err != nil && !errors.Is(err, ErrInvalidTransition) {
		return progress.Result{}, err
	}
	return commitOp(ctx, e, l, opID, opCompleteNode, res, err, now)
}

// completeNode applies a completion to l and queues its events. On
// ErrInvalidTransition the attempt count has still changed.
func (e *Engine) completeNode(l *learner, nodeID string, score int, now time.Time) (progress.Result, error) {
	res, err := l.tracker.CompleteNode(nodeID, score, now)
	if err != nil {
		return res, invalid(err)
	}

	l.emit(notify.KindNodeCompleted, now, map[string]string{
		"node":          nodeID,
		"score":         strconv.Itoa(res.Score),
		"stars":         strconv.Itoa(res.Stars),
		"best_score":    strconv.Itoa(res.BestScore),
		"mastery_delta": strconv.Itoa(res.MasteryDelta),
		"xp":            strconv.Itoa(res.XPAwarded),
		"unlocked":      strings.Join(res.UnlockedNodeIDs, ","),
	})
	for _, id := range res.UnlockedNodeIDs {
		l.emit(notify.KindNodeUnlocked, now, map[string]string{
			"node": id,
			"by":   nodeID,
		})
	}
	e.logger.Debug("node completed",
		"user", l.userID, "node", nodeID, "score", res.Score,
		"stars", res.Stars, "unlocked", res.UnlockedNodeIDs)
	return res, nil
}
