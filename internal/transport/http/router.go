package http

import (
	"net/http"

	"kidlearn-service/internal/metrics"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Quiz    *QuizHandler
	Game    *GameHandler
	API     *APIHandler
	Metrics *metrics.Metrics
}

// NewRouter mounts the WebSocket channels, JSON endpoints, health and metrics.
func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics.Handler())
	}

	route := func(pattern, name string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.Metrics.Instrument(name, fn))
	}
	route("GET /ws/quiz", "ws_quiz", h.Quiz.ServeWS)
	route("GET /ws/game", "ws_game", h.Game.ServeWS)
	route("GET /api/games", "api_games", h.API.ListGames)
	route("GET /api/learners/{learnerID}/scores", "api_learner_scores", h.API.LearnerScores)
	return mux
}
