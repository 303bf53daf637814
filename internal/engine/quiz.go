package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/abhisek/pathwise/internal/bank"
	"github.com/abhisek/pathwise/internal/hearts"
	"github.com/abhisek/pathwise/internal/mastery"
	"github.com/abhisek/pathwise/internal/notify"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/quiz"
)

const (
	opSubmitAnswer = "submit_answer"
	opFinishQuiz   = "finish_quiz"
)

// QuestionView is a question as shown to the learner, without its answer.
type QuestionView struct {
	Index   int         `json:"index"`
	ID      string      `json:"id"`
	Prompt  string      `json:"prompt"`
	Format  bank.Format `json:"format"`
	Choices []string    `json:"choices,omitempty"`
}

// QuizView is the state of an active quiz session.
type QuizView struct {
	ID        string         `json:"id"`
	TopicID   string         `json:"topic_id"`
	Purpose   quiz.Purpose   `json:"purpose"`
	Questions []QuestionView `json:"questions"`
	Answered  int            `json:"answered"`
	Completed bool           `json:"completed"`
	StartedAt time.Time      `json:"started_at"`
}

// AnswerResult is the outcome of one submitted answer.
type AnswerResult struct {
	SessionID     string     `json:"session_id"`
	Index         int        `json:"index"`
	Correct       bool       `json:"correct"`
	CorrectAnswer string     `json:"correct_answer"`
	Explanation   string     `json:"explanation,omitempty"`
	Hearts        HeartsView `json:"hearts"`
	Graded        bool       `json:"graded"`
	Answered      int        `json:"answered"`
	Completed     bool       `json:"completed"`
}

// QuizOutcome is the routed result of a finished quiz.
type QuizOutcome struct {
	Summary quiz.Summary `json:"summary"`

	// Node is set for lesson quizzes. Node.Improved is false when the score
	// did not beat the node's best or did not pass.
	Node *progress.Result `json:"node,omitempty"`

	// Passed is true when a lesson quiz reached the pass score and the node
	// was completed.
	Passed bool `json:"passed"`

	// PassScore is the score a lesson quiz needed to pass.
	PassScore int `json:"pass_score,omitempty"`

	// Recovered is true when a recovery quiz passed.
	Recovered bool       `json:"recovered"`
	Hearts    HeartsView `json:"hearts"`
}

// graded reports whether wrong answers in a quiz of purpose p cost hearts.
func graded(p quiz.Purpose) bool {
	return p != quiz.PurposeRecovery
}

func quizView(s *quiz.Session) QuizView {
	v := QuizView{
		ID:        s.ID,
		TopicID:   s.TopicID,
		Purpose:   s.Purpose,
		Answered:  s.Answered(),
		Completed: s.Completed(),
		StartedAt: s.StartedAt,
	}
	for i, q := range s.Questions() {
		v.Questions = append(v.Questions, QuestionView{
			Index:   i,
			ID:      q.ID,
			Prompt:  q.Prompt,
			Format:  q.Format,
			Choices: slices.Clone(q.Choices),
		})
	}
	return v
}

// StartQuiz draws count questions for topicID. A count of zero uses the
// configured length for the purpose.
//
// Lesson quizzes require the node to be attemptable. Lesson and practice
// quizzes require hearts; recovery quizzes are only offered while the
// learner is out of hearts. ErrNoQuestionsAvailable means the caller should
// redirect away from the quiz.
func (e *Engine) StartQuiz(ctx context.Context, userID, topicID string, purpose quiz.Purpose, count int) (QuizView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !purpose.Valid() {
		return QuizView{}, fmt.Errorf("unknown quiz purpose %q", purpose)
	}
	now := e.now().UTC()
	l, err := e.load(ctx, userID, now)
	if err != nil {
		return QuizView{}, err
	}

	switch purpose {
	case quiz.PurposeLesson:
		if err := l.tracker.CanAttempt(topicID); err != nil {
			return QuizView{}, err
		}
	case quiz.PurposeRecovery:
		if !l.hearts.Depleted() {
			return QuizView{}, fmt.Errorf("%w: recovery quiz needs an empty heart counter", ErrInvalidTransition)
		}
	}
	if graded(purpose) && l.hearts.Depleted() {
		return QuizView{}, fmt.Errorf("start %s quiz: %w", purpose, ErrOutOfLives)
	}

	if count <= 0 {
		count = e.quizQuestions
		if purpose == quiz.PurposeRecovery {
			count = e.recoveryQuestions
		}
	}
	s, err := quiz.Start(ctx, e.bank, topicID, count)
	if err != nil {
		if errors.Is(err, ErrNoQuestionsAvailable) {
			return QuizView{}, err
		}
		return QuizView{}, bankErr("draw questions", err)
	}
	s.Purpose = purpose
	s.StartedAt = now

	if err := e.commit(ctx, l, nil, now); err != nil {
		return QuizView{}, err
	}
	e.quizzes[s.ID] = &quizEntry{userID: userID, session: s}
	e.logger.Debug("quiz started",
		"user", userID, "session", s.ID, "topic", topicID,
		"purpose", purpose, "questions", s.Total())
	return quizView(s), nil
}

// Quiz returns an active session owned by userID.
func (e *Engine) Quiz(userID, sessionID string) (QuizView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.quiz(userID, sessionID)
	if err != nil {
		return QuizView{}, err
	}
	return quizView(entry.session), nil
}

func (e *Engine) quiz(userID, sessionID string) (*quizEntry, error) {
	entry, ok := e.quizzes[sessionID]
	if !ok || entry.userID != userID {
		return nil, fmt.Errorf("%w: quiz %s", ErrUnknownSession, sessionID)
	}
	return entry, nil
}

// SubmitAnswer grades the answer to question index. In lesson and practice
// quizzes a wrong answer costs a heart, and no answer is accepted while the
// learner is out of hearts. Nothing changes when an error is returned.
func (e *Engine) SubmitAnswer(ctx context.Context, opID, userID, sessionID string, index int, answer []string) (AnswerResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var prior AnswerResult
	if done, err := e.replay(ctx, opID, userID, opSubmitAnswer, &prior); done {
		return prior, err
	}

	entry, err := e.quiz(userID, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	s := entry.session
	if err := s.CanSubmit(index); err != nil {
		return AnswerResult{}, invalid(err)
	}
	q, _ := s.Question(index)
	correct := q.Check(answer)

	now := e.now().UTC()
	l, err := e.load(ctx, userID, now)
	if err != nil {
		return AnswerResult{}, err
	}
	if graded(s.Purpose) {
		if err := e.chargeAnswer(l, correct, now); err != nil {
			return AnswerResult{}, err
		}
	}

	res := AnswerResult{
		SessionID:     s.ID,
		Index:         index,
		Correct:       correct,
		CorrectAnswer: q.DisplayAnswer(),
		Explanation:   q.Explanation,
		Hearts:        e.heartsView(l.hearts, now),
		Graded:        graded(s.Purpose),
		Answered:      s.Answered() + 1,
		Completed:     s.Answered()+1 == s.Total(),
	}
	res, err = commitOp(ctx, e, l, opID, opSubmitAnswer, res, nil, now)
	if err != nil {
		return res, err
	}
	if _, err := s.SubmitAnswer(index, answer); err != nil {
		return res, invalid(err)
	}
	return res, nil
}

// chargeAnswer applies the heart rules to a graded answer.
func (e *Engine) chargeAnswer(l *learner, correct bool, now time.Time) error {
	h := l.hearts
	if _, err := e.economy.CheckCanAnswer(&h, now); err != nil {
		return err
	}
	if !correct {
		tr, err := e.economy.RecordWrongAnswer(&h, now)
		if err != nil {
			return err
		}
		if tr == hearts.EnteredDepleted {
			l.emit(notify.KindHeartsDepleted, now, map[string]string{
				"refill_at": h.RefillAt.Format(time.RFC3339),
			})
		}
	}
	l.setHearts(h)
	return nil
}

// EndQuiz ends a session early. Unanswered questions count as incorrect.
func (e *Engine) EndQuiz(userID, sessionID string) (QuizView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := e.quiz(userID, sessionID)
	if err != nil {
		return QuizView{}, err
	}
	entry.session.End()
	return quizView(entry.session), nil
}

// AbandonQuiz discards a session without recording anything.
func (e *Engine) AbandonQuiz(userID, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.quiz(userID, sessionID); err != nil {
		return err
	}
	delete(e.quizzes, sessionID)
	return nil
}

// FinishQuiz scores a completed session and routes the score by purpose: a
// passing lesson quiz completes its node while a failing one only counts
// the attempt, a recovery quiz may refill hearts and a
// practice quiz changes nothing. The session is discarded afterwards.
func (e *Engine) FinishQuiz(ctx context.Context, opID, userID, sessionID string) (QuizOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var prior QuizOutcome
	if done, err := e.replay(ctx, opID, userID, opFinishQuiz, &prior); done {
		return prior, err
	}

	entry, err := e.quiz(userID, sessionID)
	if err != nil {
		return QuizOutcome{}, err
	}
	sum, err := entry.session.Finish()
	if err != nil {
		return QuizOutcome{}, invalid(err)
	}

	now := e.now().UTC()
	l, err := e.load(ctx, userID, now)
	if err != nil {
		return QuizOutcome{}, err
	}

	out := QuizOutcome{Summary: sum}
	switch sum.Purpose {
	case quiz.PurposeLesson:
		out.PassScore = e.lessonPassScore
		if !mastery.Passed(sum.Score, e.lessonPassScore) {
			res, err := l.tracker.RecordAttempt(sum.TopicID, sum.Score, now)
			if err != nil {
				return QuizOutcome{}, invalid(err)
			}
			out.Node = &res
			break
		}
		res, err := e.completeNode(l, sum.TopicID, sum.Score, now)
		if err != nil && !errors.Is(err, ErrInvalidTransition) {
			return QuizOutcome{}, err
		}
		out.Node = &res
		out.Passed = true
	case quiz.PurposeRecovery:
		h := l.hearts
		tr, passed := e.economy.RecoveryQuizResult(&h, sum.Score, now)
		if tr == hearts.Refilled {
			l.emit(notify.KindHeartsRefilled, now, map[string]string{
				"reason":  string(hearts.ReasonRecovery),
				"current": strconv.Itoa(h.Current),
				"score":   strconv.Itoa(sum.Score),
			})
		}
		l.setHearts(h)
		out.Recovered = passed
	}
	out.Hearts = e.heartsView(l.hearts, now)

	l.emit(notify.KindQuizFinished, now, map[string]string{
		"session": sum.SessionID,
		"topic":   sum.TopicID,
		"purpose": string(sum.Purpose),
		"score":   strconv.Itoa(sum.Score),
		"correct": strconv.Itoa(sum.CorrectCount),
		"total":   strconv.Itoa(sum.Total),
	})

	out, err = commitOp(ctx, e, l, opID, opFinishQuiz, out, nil, now)
	if err != nil {
		return out, err
	}
	delete(e.quizzes, sessionID)
	return out, nil
}
