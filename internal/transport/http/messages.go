package http

import (
	"encoding/json"
	"errors"

	"kidlearn-service/internal/domain"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option *int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: errorCode(err), Message: err.Error()}}
}

// errorCode gives clients a stable identifier for the domain errors they can act on.
func errorCode(err error) string {
	var invalidOption *domain.InvalidOptionError
	var emptyQuiz *domain.EmptyQuizError
	var invalidQuiz *domain.InvalidQuizError
	switch {
	case errors.Is(err, domain.ErrNoAnswerSelected):
		return "no_answer_selected"
	case errors.Is(err, domain.ErrAnswerLocked):
		return "answer_locked"
	case errors.Is(err, domain.ErrNotReviewing):
		return "not_checked"
	case errors.Is(err, domain.ErrAtFirstQuestion):
		return "at_first_question"
	case errors.Is(err, domain.ErrAttemptCompleted):
		return "attempt_completed"
	case errors.Is(err, domain.ErrAttemptInProgress):
		return "attempt_in_progress"
	case errors.Is(err, domain.ErrNoHint):
		return "no_hint"
	case errors.Is(err, domain.ErrQuizNotFound):
		return "quiz_not_found"
	case errors.Is(err, domain.ErrUnknownMessage):
		return "unknown_message"
	case errors.As(err, &invalidOption):
		return "invalid_option"
	case errors.As(err, &emptyQuiz):
		return "empty_quiz"
	case errors.As(err, &invalidQuiz):
		return "invalid_quiz"
	default:
		return "bad_request"
	}
}

// sender queues frames for the connection's writer goroutine. Once the writer has
// stopped, sends are dropped instead of blocking the reader.
type sender struct {
	ch   chan outboundMessage[any]
	done <-chan struct{}
}

func (s sender) send(msg outboundMessage[any]) bool {
	select {
	case s.ch <- msg:
		return true
	case <-s.done:
		return false
	}
}
