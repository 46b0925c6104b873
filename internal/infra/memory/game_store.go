package memory

import (
	"context"
	"sort"
	"sync"

	"kidlearn-service/internal/domain"
)

// GameStore is an in-memory implementation of app.GameStore.
type GameStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.GameSession
	scores   []domain.GameScoreRecord
}

func NewGameStore() *GameStore {
	return &GameStore{
		sessions: make(map[string]domain.GameSession),
	}
}

func (s *GameStore) CreateSession(_ context.Context, session domain.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *GameStore) UpdateSession(_ context.Context, sessionID string, upd domain.SessionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	upd.Apply(&session)
	s.sessions[sessionID] = session
	return nil
}

// Session returns a stored session.
func (s *GameStore) Session(sessionID string) (domain.GameSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *GameStore) SaveScore(_ context.Context, record domain.GameScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.Achievements = append([]string{}, record.Achievements...)
	s.scores = append(s.scores, record)
	return nil
}

func (s *GameStore) ListScores(_ context.Context, learnerID string, filter domain.ScoreFilter) ([]domain.GameScoreRecord, error) {
	s.mu.RLock()
	out := make([]domain.GameScoreRecord, 0)
	for _, r := range s.scores {
		if r.LearnerID == learnerID && filter.Matches(r) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// ResultStore keeps quiz results in memory.
type ResultStore struct {
	mu      sync.Mutex
	results []domain.QuizResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

// Results returns a copy of everything saved so far.
func (s *ResultStore) Results() []domain.QuizResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.QuizResult(nil), s.results...)
}
