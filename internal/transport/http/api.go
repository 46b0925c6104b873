package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"kidlearn-service/internal/app"
	"kidlearn-service/internal/domain"
)

// APIHandler serves the read-only JSON endpoints.
type APIHandler struct {
	games *app.GameService
	log   logrus.FieldLogger
}

func NewAPIHandler(games *app.GameService, log logrus.FieldLogger) *APIHandler {
	return &APIHandler{games: games, log: log}
}

type catalogResponse struct {
	Games []domain.Game `json:"games"`
}

type historyResponse struct {
	Scores []domain.GameScoreRecord `json:"scores"`
	Stats  domain.GameStats         `json:"stats"`
}

// ListGames returns the whole catalog, locked games included.
func (h *APIHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.Catalog(r.Context())
	if err != nil {
		h.log.WithError(err).Error("list games failed")
		writeError(w, http.StatusInternalServerError, "could not load games")
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse{Games: games})
}

// LearnerScores returns a learner's score history with aggregated stats.
// Query: range=all|week|month|year, game=<id>, limit=<n>.
func (h *APIHandler) LearnerScores(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	if learnerID == "" {
		writeError(w, http.StatusBadRequest, "missing learner id")
		return
	}
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	filter, err := h.games.ScoreFilterFor(q.Get("range"), q.Get("game"), limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	scores, stats, err := h.games.History(r.Context(), learnerID, filter)
	if err != nil {
		h.log.WithError(err).WithField("learner_id", learnerID).Error("load score history failed")
		writeError(w, http.StatusInternalServerError, "could not load scores")
		return
	}
	if scores == nil {
		scores = []domain.GameScoreRecord{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Scores: scores, Stats: stats})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Code: http.StatusText(status), Message: message})
}
