package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoAnswerSelected is returned when checking an answer before choosing one.
	ErrNoAnswerSelected = errors.New("no answer selected")
	// ErrAnswerLocked is returned when changing an answer whose explanation is shown.
	ErrAnswerLocked = errors.New("answer is locked while reviewing")
	// ErrNotReviewing is returned when advancing before the answer was checked.
	ErrNotReviewing = errors.New("answer has not been checked")
	// ErrAtFirstQuestion is returned when navigating back from the first question.
	ErrAtFirstQuestion = errors.New("already at the first question")
	// ErrAttemptCompleted is returned for answering actions on a finished attempt.
	ErrAttemptCompleted = errors.New("quiz attempt already completed")
	// ErrAttemptInProgress is returned when a result or retake is requested too early.
	ErrAttemptInProgress = errors.New("quiz attempt still in progress")
	// ErrNoHint indicates the current question has no hint.
	ErrNoHint = errors.New("question has no hint")

	// ErrGameNotFound indicates an unknown catalog id.
	ErrGameNotFound = errors.New("game not found")
	// ErrGameLocked indicates the game requires a higher level.
	ErrGameLocked = errors.New("game is locked")
	// ErrSessionNotFound is returned when updating a game session that was never created.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrUnknownMessage is returned for inbound messages with an unsupported type.
	ErrUnknownMessage = errors.New("unsupported message type")
)

// EmptyQuizError is a configuration error: the quiz has no usable questions.
type EmptyQuizError struct {
	QuizID string
}

func (e *EmptyQuizError) Error() string {
	return fmt.Sprintf("quiz %q has no questions", e.QuizID)
}

// InvalidQuizError reports a malformed quiz payload.
type InvalidQuizError struct {
	QuizID string
	Reason string
}

func (e *InvalidQuizError) Error() string {
	return fmt.Sprintf("quiz %q is invalid: %s", e.QuizID, e.Reason)
}

// InvalidOptionError is returned when a selection is outside the question's options.
type InvalidOptionError struct {
	QuestionID string
	Index      int
	Options    int
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("option %d out of range for question %s (%d options)", e.Index, e.QuestionID, e.Options)
}

// IsConfigError reports whether err means the quiz itself cannot be taken.
func IsConfigError(err error) bool {
	var empty *EmptyQuizError
	var invalid *InvalidQuizError
	return errors.As(err, &empty) || errors.As(err, &invalid) || errors.Is(err, ErrQuizNotFound)
}
