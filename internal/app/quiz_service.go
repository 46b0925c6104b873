package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"kidlearn-service/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizResultStore persists finished attempts.
type QuizResultStore interface {
	SaveResult(ctx context.Context, result domain.QuizResult) error
}

// QuizService starts attempts and hands their results to persistence.
type QuizService struct {
	quizzes   QuizRepository
	results   QuizResultStore
	validator *QuizValidator
	deps      Deps
}

func NewQuizService(quizzes QuizRepository, results QuizResultStore, deps Deps) *QuizService {
	return &QuizService{
		quizzes:   quizzes,
		results:   results,
		validator: NewQuizValidator(),
		deps:      deps.withDefaults(),
	}
}

// StartAttempt loads and validates the quiz, then opens a fresh attempt for the learner.
// Configuration problems (unknown, empty or malformed quiz) block the attempt.
func (s *QuizService) StartAttempt(ctx context.Context, quizID, learnerID string) (*Attempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(quiz); err != nil {
		s.deps.Log.WithFields(logrus.Fields{
			"quiz_id":    quizID,
			"learner_id": learnerID,
		}).WithError(err).Warn("quiz failed validation")
		return nil, err
	}

	attempt, err := NewAttempt(s.deps.NewID(), learnerID, quiz, s.deps.Now)
	if err != nil {
		return nil, err
	}
	s.deps.Log.WithFields(logrus.Fields{
		"quiz_id":    quizID,
		"learner_id": learnerID,
		"attempt_id": attempt.ID(),
		"questions":  len(quiz.Questions),
	}).Info("quiz attempt started")
	return attempt, nil
}

// RecordResult persists a completed attempt's result and announces it. Failures are
// logged and counted, never propagated: the learner keeps their result screen.
func (s *QuizService) RecordResult(ctx context.Context, result domain.QuizResult) {
	s.deps.Metrics.QuizCompleted(result.Grade)

	fields := logrus.Fields{
		"quiz_id":    result.QuizID,
		"learner_id": result.LearnerID,
		"attempt_id": result.AttemptID,
	}
	_ = bestEffort(ctx, s.deps.Log, s.deps.Metrics, s.deps.Retry, "save_quiz_result", fields, func(ctx context.Context) error {
		return s.results.SaveResult(ctx, result)
	})
	_ = bestEffort(ctx, s.deps.Log, s.deps.Metrics, s.deps.Retry, "publish_quiz_result", fields, func(ctx context.Context) error {
		return s.deps.Publisher.Publish(ctx, ChannelQuizCompleted, result)
	})

	s.deps.Log.WithFields(fields).WithFields(logrus.Fields{
		"score": result.ScorePercent,
		"grade": result.Grade,
	}).Info("quiz attempt completed")
}
