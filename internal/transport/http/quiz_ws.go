package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"kidlearn-service/internal/app"
	"kidlearn-service/internal/domain"
)

// recordTimeout bounds persisting a result once the learner has it.
const recordTimeout = 30 * time.Second

// QuizHandler runs one quiz attempt per WebSocket connection.
type QuizHandler struct {
	service  *app.QuizService
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewQuizHandler(service *app.QuizService, log logrus.FieldLogger) *QuizHandler {
	return &QuizHandler{
		service:  service,
		log:      log,
		upgrader: newUpgrader(),
	}
}

type checkedPayload struct {
	Correct bool            `json:"correct"`
	State   app.AttemptView `json:"state"`
}

type hintPayload struct {
	QuestionID string `json:"questionId"`
	Hint       string `json:"hint"`
}

// ServeWS upgrades the request and drives the attempt from inbound messages. The
// read loop owns the attempt, so it is never touched concurrently.
func (h *QuizHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	learnerID := r.URL.Query().Get("learnerId")
	if quizID == "" || learnerID == "" {
		http.Error(w, "missing quizId or learnerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	attempt, err := h.service.StartAttempt(r.Context(), quizID, learnerID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}

	out := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range out {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()
	s := sender{ch: out, done: writerDone}

	s.send(outboundMessage[any]{Type: "state", Payload: attempt.View()})

	var recordings sync.WaitGroup
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		frames, finished := h.handle(attempt, inbound)
		for _, msg := range frames {
			s.send(msg)
		}
		if finished != nil {
			h.recordAsync(r.Context(), &recordings, *finished)
		}
	}

	close(out)
	<-writerDone
	recordings.Wait()
}

// recordAsync persists the result after its frame is queued, on a context detached
// from the connection and bounded by recordTimeout.
func (h *QuizHandler) recordAsync(ctx context.Context, wg *sync.WaitGroup, result domain.QuizResult) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()
		h.service.RecordResult(rctx, result)
	}()
}

// handle applies one inbound message. A non-nil result means the attempt just completed.
func (h *QuizHandler) handle(attempt *app.Attempt, inbound inboundMessage) ([]outboundMessage[any], *domain.QuizResult) {
	state := func() outboundMessage[any] {
		return outboundMessage[any]{Type: "state", Payload: attempt.View()}
	}
	fail := func(err error) ([]outboundMessage[any], *domain.QuizResult) {
		return []outboundMessage[any]{errorMessage(err)}, nil
	}

	switch inbound.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
			return fail(errors.New("select needs an option index"))
		}
		if err := attempt.Select(*payload.Option); err != nil {
			return fail(err)
		}
		return []outboundMessage[any]{state()}, nil
	case "check":
		correct, err := attempt.Check()
		if err != nil {
			return fail(err)
		}
		return []outboundMessage[any]{{Type: "checked", Payload: checkedPayload{Correct: correct, State: attempt.View()}}}, nil
	case "next":
		completed, err := attempt.Next()
		if err != nil {
			return fail(err)
		}
		if !completed {
			return []outboundMessage[any]{state()}, nil
		}
		result, err := attempt.Result()
		if err != nil {
			return fail(err)
		}
		return []outboundMessage[any]{{Type: "result", Payload: result}}, &result
	case "previous":
		if err := attempt.Previous(); err != nil {
			return fail(err)
		}
		return []outboundMessage[any]{state()}, nil
	case "retake":
		if err := attempt.Retake(); err != nil {
			return fail(err)
		}
		return []outboundMessage[any]{state()}, nil
	case "hint":
		hint, err := attempt.Hint()
		if err != nil {
			return fail(err)
		}
		q := attempt.Quiz().Questions[attempt.Current()]
		return []outboundMessage[any]{{Type: "hint", Payload: hintPayload{QuestionID: q.ID, Hint: hint}}}, nil
	default:
		return fail(fmt.Errorf("%w: %q", domain.ErrUnknownMessage, inbound.Type))
	}
}

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
}
