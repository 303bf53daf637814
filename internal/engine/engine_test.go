package engine

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/notify"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/quiz"
	"github.com/abhisek/pathwise/internal/store"
)

type fixture struct {
	engine *Engine
	repo   *memRepo
	clock  *clock
	events *notify.Recorder
}

func newFixture(t *testing.T, b bank.Bank) *fixture {
	t.Helper()
	f := &fixture{
		repo:   newMemRepo(),
		clock:  &clock{t: t0},
		events: &notify.Recorder{},
	}
	if b == nil {
		b = abcBank()
	}
	e, err := New(Options{
		Graph: abcGraph(),
		Bank:  b,
		Repo:  f.repo,
		Sinks: []notify.Sink{f.events},
		Now:   f.clock.Now,
		Rand:  rand.New(rand.NewPCG(1, 2)),
	})
	require.NoError(t, err)
	f.engine = e
	return f
}

func statusOf(t *testing.T, tree TreeView, id string) progress.NodeProgress {
	t.Helper()
	for _, n := range tree.Nodes {
		if n.Node.ID == id {
			return n.Progress
		}
	}
	t.Fatalf("node %s not in tree", id)
	return progress.NodeProgress{}
}

// answerAll answers every question of a session, getting the first
// `correct` right and the rest wrong.
func answerAll(t *testing.T, e *Engine, userID string, v QuizView, correct int) AnswerResult {
	t.Helper()
	var last AnswerResult
	for i, q := range v.Questions {
		answer := []string{"wrong"}
		if i < correct {
			answer = []string{q.ID}
		}
		res, err := e.SubmitAnswer(t.Context(), "", userID, v.ID, i, answer)
		require.NoError(t, err, "question %d", i)
		last = res
	}
	return last
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{Bank: abcBank(), Repo: newMemRepo()})
	assert.Error(t, err)
	_, err = New(Options{Graph: abcGraph(), Repo: newMemRepo()})
	assert.Error(t, err)
	_, err = New(Options{Graph: abcGraph(), Bank: abcBank()})
	assert.Error(t, err)
}

func TestTree_NewLearner(t *testing.T) {
	f := newFixture(t, nil)

	tree, err := f.engine.Tree(t.Context(), "u1")
	require.NoError(t, err)

	assert.Equal(t, progress.StatusCurrent, statusOf(t, tree, "A").Status)
	assert.Equal(t, progress.StatusLocked, statusOf(t, tree, "B").Status)
	assert.Equal(t, progress.StatusLocked, statusOf(t, tree, "C").Status)
	assert.Equal(t, 5, tree.Hearts.Current)
	assert.Len(t, tree.Current(), 1)
	assert.Len(t, f.repo.progress["u1"], 3, "fresh rows are persisted")
}

func TestCompleteNode_UnlockCascade(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	res, err := f.engine.CompleteNode(ctx, "", "u1", "A", 80)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, res.UnlockedNodeIDs)
	assert.Equal(t, 2, res.StarsAwarded)

	res, err = f.engine.CompleteNode(ctx, "", "u1", "B", 95)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, res.UnlockedNodeIDs)
	assert.Equal(t, 3, res.StarsAwarded)

	tree, err := f.engine.Tree(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, progress.StatusCompleted, statusOf(t, tree, "A").Status)
	assert.Equal(t, progress.StatusCompleted, statusOf(t, tree, "B").Status)
	assert.Equal(t, progress.StatusCurrent, statusOf(t, tree, "C").Status)
	assert.Equal(t, 30, tree.Profile.XP)
	assert.Equal(t, 1, tree.Streak)
	assert.Equal(t, 5, tree.TotalStars)

	assert.Equal(t, []notify.Kind{
		notify.KindNodeCompleted, notify.KindNodeUnlocked,
		notify.KindNodeCompleted, notify.KindNodeUnlocked,
	}, f.events.Kinds())
	assert.Equal(t, f.events.Kinds(), f.repo.kinds(), "sinks see exactly the committed events")
}

func TestCompleteNode_PrerequisitesNotMet(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.engine.CompleteNode(t.Context(), "", "u1", "C", 100)
	require.ErrorIs(t, err, ErrPrerequisitesNotMet)
	assert.Zero(t, f.repo.commitCount())
	assert.Empty(t, f.events.Events())

	_, err = f.engine.CompleteNode(t.Context(), "", "u1", "nope", 100)
	require.ErrorIs(t, err, ErrUnknownNode)
}

func TestCompleteNode_NonImprovingRepeat(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	_, err := f.engine.CompleteNode(ctx, "", "u1", "A", 80)
	require.NoError(t, err)
	f.events.Drain()

	for _, score := range []int{80, 40} {
		res, err := f.engine.CompleteNode(ctx, "", "u1", "A", score)
		require.ErrorIs(t, err, ErrInvalidTransition)
		assert.False(t, res.Improved)
		assert.Empty(t, res.UnlockedNodeIDs)
		assert.Equal(t, 80, res.BestScore)
		assert.Equal(t, 2, res.Stars)
	}
	assert.Empty(t, f.events.Events(), "no duplicate unlock events")

	tree, err := f.engine.Tree(ctx, "u1")
	require.NoError(t, err)
	a := statusOf(t, tree, "A")
	assert.Equal(t, 3, a.Attempts)
	assert.Equal(t, 80, a.BestScore)
	assert.Equal(t, progress.StatusCurrent, statusOf(t, tree, "B").Status)

	res, err := f.engine.CompleteNode(ctx, "", "u1", "A", 92)
	require.NoError(t, err)
	assert.True(t, res.Improved)
	assert.Equal(t, 3, res.Stars)
	assert.Empty(t, res.UnlockedNodeIDs)
	assert.Equal(t, 12, res.MasteryDelta)
	assert.Zero(t, res.XPAwarded, "xp is only awarded once")
}

func TestCompleteNode_IdempotentOperation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	first, err := f.engine.CompleteNode(ctx, "op-1", "u1", "A", 80)
	require.NoError(t, err)
	commits := f.repo.commitCount()

	again, err := f.engine.CompleteNode(ctx, "op-1", "u1", "A", 80)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, commits, f.repo.commitCount(), "replay writes nothing")
	assert.Equal(t, 1, f.repo.progress["u1"]["A"].Attempts)
	assert.Len(t, f.events.Events(), 2)

	// A failed-but-recorded outcome replays with the same error.
	_, err = f.engine.CompleteNode(ctx, "op-2", "u1", "A", 50)
	require.ErrorIs(t, err, ErrInvalidTransition)
	res, err := f.engine.CompleteNode(ctx, "op-2", "u1", "A", 50)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, f.repo.progress["u1"]["A"].Attempts)

	// Reusing an ID for another operation is rejected.
	_, err = f.engine.SubmitAnswer(ctx, "op-1", "u1", "missing", 0, []string{"x"})
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.engine.CompleteNode(ctx, "op-1", "u2", "A", 80)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteNode_StoreFailureLeavesNoTrace(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	f.repo.failCommit = errDown

	_, err := f.engine.CompleteNode(ctx, "op-1", "u1", "A", 80)
	require.ErrorIs(t, err, ErrCollaboratorUnavailable)
	require.ErrorIs(t, err, errDown)
	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "store", ce.Collaborator)
	assert.Empty(t, f.events.Events())

	f.repo.failCommit = nil
	tree, err := f.engine.Tree(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, progress.StatusCurrent, statusOf(t, tree, "A").Status)
	assert.Zero(t, statusOf(t, tree, "A").Attempts)
	assert.Equal(t, progress.StatusLocked, statusOf(t, tree, "B").Status)

	// The operation was never recorded, so a retry applies it.
	res, err := f.engine.CompleteNode(ctx, "op-1", "u1", "A", 80)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, res.UnlockedNodeIDs)
}

func TestLoadFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.failLoad = errDown

	_, err := f.engine.Tree(t.Context(), "u1")
	require.ErrorIs(t, err, ErrCollaboratorUnavailable)
	_, err = f.engine.Hearts(t.Context(), "u1")
	require.ErrorIs(t, err, errDown)
}

func TestHearts_DepleteThenRecover(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	v, err := f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposePractice, 10)
	require.NoError(t, err)

	var res AnswerResult
	for i := range 5 {
		res, err = f.engine.SubmitAnswer(ctx, "", "u1", v.ID, i, []string{"wrong"})
		require.NoError(t, err)
		assert.False(t, res.Correct)
		assert.Equal(t, 4-i, res.Hearts.Current)
	}
	assert.True(t, res.Hearts.Depleted)
	assert.Equal(t, t0.Add(20*time.Minute), res.Hearts.RefillAt)
	assert.Equal(t, 20*time.Minute, res.Hearts.Remaining)
	assert.Equal(t, []notify.Kind{notify.KindHeartsDepleted}, f.events.Kinds())

	_, err = f.engine.SubmitAnswer(ctx, "", "u1", v.ID, 5, []string{v.Questions[5].ID})
	require.ErrorIs(t, err, ErrOutOfLives)
	_, err = f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposeLesson, 0)
	require.ErrorIs(t, err, ErrOutOfLives)
	_, err = f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposePractice, 0)
	require.ErrorIs(t, err, ErrOutOfLives)
	require.NoError(t, f.engine.AbandonQuiz("u1", v.ID))

	f.clock.Advance(5 * time.Minute)
	rv, err := f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposeRecovery, 0)
	require.NoError(t, err)
	require.Len(t, rv.Questions, DefaultRecoveryQuestions)

	last := answerAll(t, f.engine, "u1", rv, 3)
	assert.True(t, last.Completed)
	assert.False(t, last.Graded)

	out, err := f.engine.FinishQuiz(ctx, "", "u1", rv.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, out.Summary.Score)
	assert.True(t, out.Recovered)
	assert.Equal(t, 5, out.Hearts.Current)
	assert.False(t, out.Hearts.Depleted)
	assert.True(t, out.Hearts.RefillAt.IsZero())

	evs := f.events.Events()
	require.Len(t, evs, 3)
	assert.Equal(t, notify.KindHeartsRefilled, evs[1].Kind)
	assert.Equal(t, "recovery_quiz", evs[1].Data["reason"])
	assert.Equal(t, notify.KindQuizFinished, evs[2].Kind)

	h, err := f.engine.Hearts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, h.Current)
}

func TestHearts_FailedRecoveryChangesNothing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	v, err := f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposePractice, 5)
	require.NoError(t, err)
	answerAll(t, f.engine, "u1", v, 0)

	rv, err := f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposeRecovery, 4)
	require.NoError(t, err)
	answerAll(t, f.engine, "u1", rv, 1)

	out, err := f.engine.FinishQuiz(ctx, "", "u1", rv.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, out.Summary.Score)
	assert.False(t, out.Recovered)
	assert.True(t, out.Hearts.Depleted)
	assert.Equal(t, t0.Add(20*time.Minute), out.Hearts.RefillAt)
}

func TestHearts_TimerRefill(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	v, err := f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposeLesson, 5)
	require.NoError(t, err)
	answerAll(t, f.engine, "u1", v, 0)

	f.clock.Advance(19 * time.Minute)
	h, err := f.engine.Hearts(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, h.Current)
	assert.Equal(t, time.Minute, h.Remaining)

	f.clock.Advance(time.Minute)
	h, err = f.engine.Hearts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, h.Current)
	assert.Zero(t, h.Remaining)

	_, err = f.engine.Hearts(ctx, "u1")
	require.NoError(t, err)

	refills := 0
	for _, ev := range f.events.Events() {
		if ev.Kind == notify.KindHeartsRefilled {
			refills++
			assert.Equal(t, "timer", ev.Data["reason"])
		}
	}
	assert.Equal(t, 1, refills, "refill is reported once")
}

func TestQuiz_LessonScoreCompletesNode(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	v, err := f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposeLesson, 0)
	require.NoError(t, err)
	require.Len(t, v.Questions, 10)
	for _, q := range v.Questions {
		assert.Contains(t, q.Prompt, q.ID)
	}

	_, err = f.engine.FinishQuiz(ctx, "", "u1", v.ID)
	require.ErrorIs(t, err, ErrInvalidTransition, "finish before completion")

	last := answerAll(t, f.engine, "u1", v, 7)
	assert.True(t, last.Completed)
	assert.Equal(t, 2, last.Hearts.Current)

	_, err = f.engine.SubmitAnswer(ctx, "", "u1", v.ID, 0, []string{"again"})
	require.ErrorIs(t, err, ErrInvalidTransition)

	out, err := f.engine.FinishQuiz(ctx, "", "u1", v.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, out.Summary.Score)
	assert.Equal(t, 7, out.Summary.CorrectCount)
	assert.Equal(t, 10, out.Summary.Total)
	require.NotNil(t, out.Node)
	assert.Equal(t, 2, out.Node.StarsAwarded)
	assert.Equal(t, []string{"B"}, out.Node.UnlockedNodeIDs)
	assert.True(t, out.Passed)

	_, err = f.engine.Quiz("u1", v.ID)
	require.ErrorIs(t, err, ErrUnknownSession, "finished sessions are discarded")

	assert.Equal(t, []notify.Kind{
		notify.KindNodeCompleted, notify.KindNodeUnlocked, notify.KindQuizFinished,
	}, f.events.Kinds())
}

func TestQuiz_FailingLessonOnlyCountsTheAttempt(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	v, err := f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposeLesson, 4)
	require.NoError(t, err)
	answerAll(t, f.engine, "u1", v, 1)

	out, err := f.engine.FinishQuiz(ctx, "", "u1", v.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, out.Summary.Score)
	assert.False(t, out.Passed)
	assert.Equal(t, DefaultLessonPassScore, out.PassScore)
	require.NotNil(t, out.Node)
	assert.False(t, out.Node.Improved)
	assert.Empty(t, out.Node.UnlockedNodeIDs)
	assert.Equal(t, 1, out.Node.Attempts)

	tree, err := f.engine.Tree(ctx, "u1")
	require.NoError(t, err)
	a := statusOf(t, tree, "A")
	assert.Equal(t, progress.StatusCurrent, a.Status)
	assert.Equal(t, 1, a.Attempts)
	assert.Zero(t, a.BestScore)
	assert.Zero(t, a.Stars)
	assert.Equal(t, progress.StatusLocked, statusOf(t, tree, "B").Status)
	assert.Zero(t, tree.Profile.XP)

	assert.Equal(t, []notify.Kind{notify.KindQuizFinished}, f.events.Kinds())
}

func TestQuiz_LessonPassScoreIsConfigurable(t *testing.T) {
	f := newFixture(t, nil)
	e, err := New(Options{
		Graph:           abcGraph(),
		Bank:            abcBank(),
		Repo:            f.repo,
		Now:             f.clock.Now,
		LessonPassScore: 80,
	})
	require.NoError(t, err)
	assert.Equal(t, 80, e.LessonPassScore())
	ctx := t.Context()

	v, err := e.StartQuiz(ctx, "u1", "A", quiz.PurposeLesson, 4)
	require.NoError(t, err)
	answerAll(t, e, "u1", v, 3)
	out, err := e.FinishQuiz(ctx, "", "u1", v.ID)
	require.NoError(t, err)
	assert.False(t, out.Passed, "75 is below 80")

	v, err = e.StartQuiz(ctx, "u1", "A", quiz.PurposeLesson, 4)
	require.NoError(t, err)
	answerAll(t, e, "u1", v, 4)
	out, err = e.FinishQuiz(ctx, "", "u1", v.ID)
	require.NoError(t, err)
	assert.True(t, out.Passed)
	assert.Equal(t, []string{"B"}, out.Node.UnlockedNodeIDs)
	assert.Equal(t, 2, out.Node.Attempts)
}

func TestQuiz_LessonRepeatDoesNotImprove(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	_, err := f.engine.CompleteNode(ctx, "", "u1", "A", 90)
	require.NoError(t, err)

	v, err := f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposeLesson, 4)
	require.NoError(t, err)
	answerAll(t, f.engine, "u1", v, 4)

	out, err := f.engine.FinishQuiz(ctx, "", "u1", v.ID)
	require.NoError(t, err)
	require.NotNil(t, out.Node)
	assert.True(t, out.Node.Improved, "100 beats 90")

	v, err = f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposeLesson, 4)
	require.NoError(t, err)
	answerAll(t, f.engine, "u1", v, 2)
	out, err = f.engine.FinishQuiz(ctx, "", "u1", v.ID)
	require.NoError(t, err)
	assert.False(t, out.Node.Improved)
	assert.Equal(t, 100, out.Node.BestScore)
}

func TestQuiz_EndEarly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	v, err := f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposePractice, 10)
	require.NoError(t, err)
	_, err = f.engine.SubmitAnswer(ctx, "", "u1", v.ID, 3, []string{v.Questions[3].ID})
	require.NoError(t, err)

	ended, err := f.engine.EndQuiz("u1", v.ID)
	require.NoError(t, err)
	assert.True(t, ended.Completed)
	assert.Equal(t, 1, ended.Answered)

	out, err := f.engine.FinishQuiz(ctx, "", "u1", v.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Summary.Score)
	assert.Equal(t, 1, out.Summary.Answered)
	assert.Nil(t, out.Node, "practice does not touch the tree")
}

func TestQuiz_StartErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	_, err := f.engine.StartQuiz(ctx, "u1", "B", quiz.PurposeLesson, 0)
	assert.ErrorIs(t, err, ErrPrerequisitesNotMet)

	_, err = f.engine.StartQuiz(ctx, "u1", "Z", quiz.PurposePractice, 0)
	assert.ErrorIs(t, err, ErrNoQuestionsAvailable)

	_, err = f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposeRecovery, 0)
	assert.ErrorIs(t, err, ErrInvalidTransition, "recovery needs an empty counter")

	_, err = f.engine.StartQuiz(ctx, "u1", "A", quiz.Purpose("exam"), 0)
	assert.Error(t, err)

	_, err = f.engine.StartQuiz(ctx, "", "A", quiz.PurposePractice, 0)
	assert.Error(t, err)
}

func TestQuiz_BankFailure(t *testing.T) {
	f := newFixture(t, failingBank{err: errDown})

	_, err := f.engine.StartQuiz(t.Context(), "u1", "A", quiz.PurposePractice, 0)
	require.ErrorIs(t, err, ErrCollaboratorUnavailable)
	require.ErrorIs(t, err, errDown)
	assert.False(t, errors.Is(err, ErrNoQuestionsAvailable))
}

func TestQuiz_SessionsBelongToTheirLearner(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	v, err := f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposePractice, 3)
	require.NoError(t, err)

	_, err = f.engine.Quiz("u2", v.ID)
	assert.ErrorIs(t, err, ErrUnknownSession)
	_, err = f.engine.SubmitAnswer(ctx, "", "u2", v.ID, 0, []string{"x"})
	assert.ErrorIs(t, err, ErrUnknownSession)
	_, err = f.engine.EndQuiz("u2", v.ID)
	assert.ErrorIs(t, err, ErrUnknownSession)

	got, err := f.engine.Quiz("u1", v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, t0, got.StartedAt)
}

func TestSubmitAnswer_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	v, err := f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposePractice, 3)
	require.NoError(t, err)

	first, err := f.engine.SubmitAnswer(ctx, "answer-0", "u1", v.ID, 0, []string{"wrong"})
	require.NoError(t, err)
	again, err := f.engine.SubmitAnswer(ctx, "answer-0", "u1", v.ID, 0, []string{"wrong"})
	require.NoError(t, err)
	assert.Equal(t, first, again)

	h, err := f.engine.Hearts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, h.Current, "a retried answer costs one heart")
}

func TestSubmitAnswer_StoreFailureKeepsQuestionOpen(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	v, err := f.engine.StartQuiz(ctx, "u1", "A", quiz.PurposePractice, 3)
	require.NoError(t, err)

	f.repo.failCommit = errDown
	_, err = f.engine.SubmitAnswer(ctx, "", "u1", v.ID, 0, []string{"wrong"})
	require.ErrorIs(t, err, ErrCollaboratorUnavailable)

	f.repo.failCommit = nil
	got, err := f.engine.Quiz("u1", v.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Answered)

	res, err := f.engine.SubmitAnswer(ctx, "", "u1", v.ID, 0, []string{"wrong"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Hearts.Current)
}

func TestExercises_NoRepeatUntilExhausted(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	runID, err := f.engine.StartExercises(ctx, "u1", "A")
	require.NoError(t, err)

	_, err = f.engine.SubmitExercise(ctx, "", "u1", runID, []string{"x"})
	require.ErrorIs(t, err, ErrInvalidTransition, "nothing pending yet")

	seen := map[string]bool{}
	for i := range 3 {
		ex, err := f.engine.NextExercise(ctx, "u1", runID)
		require.NoError(t, err)
		assert.False(t, seen[ex.ID], "exercise %s repeated", ex.ID)
		seen[ex.ID] = true
		assert.Equal(t, i+1, ex.Served)

		pending, err := f.engine.NextExercise(ctx, "u1", runID)
		require.NoError(t, err)
		assert.Equal(t, ex.ID, pending.ID, "unanswered exercise is served again")

		res, err := f.engine.SubmitExercise(ctx, "", "u1", runID, []string{ex.ID})
		require.NoError(t, err)
		assert.True(t, res.Attempt.IsCorrect)
		assert.Contains(t, res.Attempt.UsedExerciseIDs, ex.ID)
	}

	_, err = f.engine.NextExercise(ctx, "u1", runID)
	require.ErrorIs(t, err, ErrNoExerciseAvailable)

	sum, err := f.engine.EndExercises("u1", runID)
	require.NoError(t, err)
	assert.Equal(t, "A", sum.LessonID)
	assert.Equal(t, 3, sum.Correct)
	assert.Len(t, sum.Served, 3)
	assert.Len(t, sum.Attempts, 3)

	_, err = f.engine.NextExercise(ctx, "u1", runID)
	require.ErrorIs(t, err, ErrUnknownSession)
}

func TestExercises_SkipAndHearts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()

	_, err := f.engine.StartExercises(ctx, "u1", "B")
	require.ErrorIs(t, err, ErrPrerequisitesNotMet)

	runID, err := f.engine.StartExercises(ctx, "u1", "A")
	require.NoError(t, err)

	first, err := f.engine.NextExercise(ctx, "u1", runID)
	require.NoError(t, err)
	second, err := f.engine.SkipExercise(ctx, "u1", runID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	res, err := f.engine.SubmitExercise(ctx, "ex-op", "u1", runID, []string{"wrong"})
	require.NoError(t, err)
	assert.False(t, res.Attempt.IsCorrect)
	assert.Equal(t, second.ID, res.CorrectAnswer)
	assert.Equal(t, 4, res.Hearts.Current)

	again, err := f.engine.SubmitExercise(ctx, "ex-op", "u1", runID, []string{"wrong"})
	require.NoError(t, err)
	assert.Equal(t, res, again)
	assert.Equal(t, 4, f.repo.hearts["u1"].Current)
}

func TestExercises_BankFailure(t *testing.T) {
	f := newFixture(t, failingBank{err: errDown})

	runID, err := f.engine.StartExercises(t.Context(), "u1", "A")
	require.NoError(t, err)
	_, err = f.engine.NextExercise(t.Context(), "u1", runID)
	require.ErrorIs(t, err, ErrCollaboratorUnavailable)
	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "bank", ce.Collaborator)
}

func TestSinkFailureIsNotFatal(t *testing.T) {
	repo := newMemRepo()
	e, err := New(Options{
		Graph: abcGraph(),
		Bank:  abcBank(),
		Repo:  repo,
		Sinks: []notify.Sink{notify.Func(func(context.Context, notify.Event) error {
			return errDown
		})},
		Now: func() time.Time { return t0 },
	})
	require.NoError(t, err)

	_, err = e.CompleteNode(t.Context(), "", "u1", "A", 100)
	require.NoError(t, err)
	assert.Len(t, repo.kinds(), 2)
}

func TestEngine_WithSQLiteStore(t *testing.T) {
	s, err := store.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	newEngine := func() *Engine {
		e, err := New(Options{
			Graph: abcGraph(),
			Bank:  abcBank(),
			Repo:  s.Learners(),
			Now:   func() time.Time { return t0 },
		})
		require.NoError(t, err)
		return e
	}
	ctx := t.Context()

	first, err := newEngine().CompleteNode(ctx, "op-1", "u1", "A", 90)
	require.NoError(t, err)

	e := newEngine()
	tree, err := e.Tree(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, statusOf(t, tree, "A").Stars)
	assert.Equal(t, progress.StatusCurrent, statusOf(t, tree, "B").Status)
	assert.Equal(t, 10, tree.Profile.XP)

	replayed, err := e.CompleteNode(ctx, "op-1", "u1", "A", 90)
	require.NoError(t, err)
	assert.Equal(t, first, replayed)

	evs, err := s.Events().QueryEvents(ctx, store.QueryOpts{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, notify.KindNodeCompleted, evs[0].Kind)
	assert.Equal(t, "B", evs[1].Data["node"])
}
