package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"kidlearn-service/internal/domain"
)

// GameStore is the persistence collaborator for sessions and score records.
type GameStore interface {
	CreateSession(ctx context.Context, session domain.GameSession) error
	// UpdateSession merges the non-nil fields of upd into the stored session.
	UpdateSession(ctx context.Context, sessionID string, upd domain.SessionUpdate) error
	SaveScore(ctx context.Context, record domain.GameScoreRecord) error
	// ListScores returns a learner's records, newest completion first.
	ListScores(ctx context.Context, learnerID string, filter domain.ScoreFilter) ([]domain.GameScoreRecord, error)
}

// SessionTracker marks sessions that are currently being played.
type SessionTracker interface {
	Mark(ctx context.Context, sessionID string) error
	Clear(ctx context.Context, sessionID string) error
}

// GameCatalog lists the games a learner can launch.
type GameCatalog interface {
	Games(ctx context.Context) ([]domain.Game, error)
	Game(ctx context.Context, gameID string) (domain.Game, error)
}

// GameService launches hosted game sessions and reports score history.
type GameService struct {
	catalog GameCatalog
	store   GameStore
	tracker SessionTracker
	deps    Deps
}

func NewGameService(catalog GameCatalog, store GameStore, tracker SessionTracker, deps Deps) *GameService {
	return &GameService{
		catalog: catalog,
		store:   store,
		tracker: tracker,
		deps:    deps.withDefaults(),
	}
}

// Catalog returns every game, locked ones included.
func (s *GameService) Catalog(ctx context.Context) ([]domain.Game, error) {
	return s.catalog.Games(ctx)
}

// Launch writes a started session for the learner and returns its recorder.
func (s *GameService) Launch(ctx context.Context, gameID, learnerID string) (*Recorder, error) {
	game, err := s.catalog.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Locked {
		return nil, domain.ErrGameLocked
	}

	now := s.deps.Now()
	session := domain.GameSession{
		ID:          s.deps.NewID(),
		GameID:      game.ID,
		LearnerID:   learnerID,
		Status:      domain.GameStatusStarted,
		StartedAt:   now,
		LastUpdated: now,
	}
	fields := logrus.Fields{
		"session_id": session.ID,
		"game_id":    game.ID,
		"learner_id": learnerID,
	}
	err = bestEffort(ctx, s.deps.Log, s.deps.Metrics, s.deps.Retry, "create_game_session", fields, func(ctx context.Context) error {
		return s.store.CreateSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	if err := s.tracker.Mark(ctx, session.ID); err != nil {
		s.deps.Log.WithFields(fields).WithError(err).Warn("mark session live failed")
	}

	s.deps.Metrics.GameSession(string(domain.GameStatusStarted))
	s.deps.Log.WithFields(fields).Info("game session started")
	return newRecorder(session, s.store, s.tracker, s.deps), nil
}

// History returns the learner's filtered score records with aggregated statistics.
func (s *GameService) History(ctx context.Context, learnerID string, filter domain.ScoreFilter) ([]domain.GameScoreRecord, domain.GameStats, error) {
	records, err := s.store.ListScores(ctx, learnerID, filter)
	if err != nil {
		return nil, domain.GameStats{}, err
	}

	titles := map[string]string{}
	if games, err := s.catalog.Games(ctx); err == nil {
		for _, g := range games {
			titles[g.ID] = g.Title
		}
	}
	return records, ComputeGameStats(records, titles, s.deps.Now()), nil
}

// ScoreFilterFor builds a history filter from a range name ("all", "week", "month", "year").
func (s *GameService) ScoreFilterFor(rangeName, gameID string, limit int) (domain.ScoreFilter, error) {
	since, err := SinceForRange(rangeName, s.deps.Now())
	if err != nil {
		return domain.ScoreFilter{}, err
	}
	return domain.ScoreFilter{Since: since, GameID: gameID, Limit: limit}, nil
}
