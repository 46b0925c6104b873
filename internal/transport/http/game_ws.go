package http

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"kidlearn-service/internal/app"
	"kidlearn-service/internal/domain"
)

// GameHandler bridges a hosted game's message channel to a session recorder.
type GameHandler struct {
	service  *app.GameService
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewGameHandler(service *app.GameService, log logrus.FieldLogger) *GameHandler {
	return &GameHandler{
		service:  service,
		log:      log,
		upgrader: newUpgrader(),
	}
}

type sessionPayload struct {
	SessionID string            `json:"sessionId"`
	GameID    string            `json:"gameId"`
	LearnerID string            `json:"learnerId"`
	Status    domain.GameStatus `json:"status"`
}

// ServeWS launches a session, then feeds every inbound frame to the recorder in
// arrival order. Closing the socket abandons a session that never completed.
func (h *GameHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	learnerID := r.URL.Query().Get("learnerId")
	if gameID == "" || learnerID == "" {
		http.Error(w, "missing gameId or learnerId", http.StatusBadRequest)
		return
	}

	recorder, err := h.service.Launch(r.Context(), gameID, learnerID)
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrGameLocked):
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	case err != nil:
		h.log.WithError(err).WithField("game_id", gameID).Error("launch game failed")
		http.Error(w, "could not start game session", http.StatusServiceUnavailable)
		return
	}

	events := make(chan domain.GameEvent, 16)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = recorder.Run(r.Context(), events)
	}()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		close(events)
		<-runDone
		return
	}
	defer conn.Close()

	updates, cancel := recorder.Subscribe()

	out := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

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

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if msg, ok := updateMessage(update); ok {
					select {
					case out <- msg:
					case <-writerDone:
						return
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	s.send(outboundMessage[any]{Type: "session", Payload: sessionPayload{
		SessionID: recorder.SessionID(),
		GameID:    gameID,
		LearnerID: learnerID,
		Status:    recorder.Status(),
	}})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		ev, err := domain.ParseGameMessage(raw)
		if err != nil {
			s.send(errorMessage(err))
			continue
		}
		select {
		case events <- ev:
		case <-runDone:
		}
	}

	close(events)
	<-runDone
	cancel()
	close(closeSignals)
	<-updatesDone
	close(out)
	<-writerDone
}

func updateMessage(update app.RecorderUpdate) (outboundMessage[any], bool) {
	switch update.Kind {
	case app.UpdateScore:
		return outboundMessage[any]{Type: "score", Payload: update}, true
	case app.UpdateAchievement:
		return outboundMessage[any]{Type: "achievement", Payload: update}, true
	case app.UpdateCompleted:
		return outboundMessage[any]{Type: "completed", Payload: update}, true
	case app.UpdateRestarted:
		return outboundMessage[any]{Type: "restarted", Payload: update}, true
	default:
		return outboundMessage[any]{}, false
	}
}
