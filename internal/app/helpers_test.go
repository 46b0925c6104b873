package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"kidlearn-service/internal/app"
	"kidlearn-service/internal/domain"
	"kidlearn-service/internal/infra/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// additionBasics is the eight question addition quiz shipped with the service.
func additionBasics() domain.Quiz {
	q := func(id, prompt string, options []string, correct, points int, diff domain.Difficulty, hint string) domain.QuizQuestion {
		return domain.QuizQuestion{
			ID: id, Prompt: prompt, Options: options, CorrectAnswer: correct,
			Explanation: "explanation " + id, Difficulty: diff, Points: points, Hint: hint,
		}
	}
	return domain.Quiz{
		ID:    "addition-basics",
		Title: "Addition Basics",
		Questions: []domain.QuizQuestion{
			q("1", "What is 2 + 3?", []string{"4", "5", "6", "7"}, 1, 10, domain.DifficultyEasy, "Try counting on your fingers!"),
			q("2", "What is 7 + 4?", []string{"10", "11", "12", "13"}, 1, 10, domain.DifficultyEasy, "Start with 7 and count up 4 more."),
			q("3", "What is 15 + 8?", []string{"22", "23", "24", "25"}, 1, 15, domain.DifficultyMedium, "Break it down: 15 + 5 + 3"),
			q("4", "What is 6 + 9?", []string{"14", "16", "15", "13"}, 2, 10, domain.DifficultyEasy, ""),
			q("5", "What is 12 + 19?", []string{"30", "31", "32", "29"}, 1, 20, domain.DifficultyMedium, "Round 19 up to 20 first."),
			q("6", "What is 25 + 37?", []string{"61", "62", "63", "52"}, 1, 25, domain.DifficultyHard, "Add the tens, then the ones."),
			q("7", "What is 8 + 8?", []string{"15", "16", "17", "18"}, 1, 20, domain.DifficultyEasy, "Double 8!"),
			q("8", "What is 13 + 14?", []string{"26", "27", "28", "25"}, 1, 15, domain.DifficultyMedium, ""),
		},
	}
}

// failingGameStore wraps the in-memory store and fails selected operations.
type failingGameStore struct {
	*memory.GameStore

	mu          sync.Mutex
	failScore   bool
	failUpdate  bool
	failCreate  bool
	scoreCalls  int
	updateCalls int
}

var errStoreDown = errors.New("store unavailable")

func (s *failingGameStore) CreateSession(ctx context.Context, session domain.GameSession) error {
	if s.failCreate {
		return errStoreDown
	}
	return s.GameStore.CreateSession(ctx, session)
}

func (s *failingGameStore) SaveScore(ctx context.Context, record domain.GameScoreRecord) error {
	s.mu.Lock()
	s.scoreCalls++
	fail := s.failScore
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.GameStore.SaveScore(ctx, record)
}

func (s *failingGameStore) UpdateSession(ctx context.Context, id string, upd domain.SessionUpdate) error {
	s.mu.Lock()
	s.updateCalls++
	fail := s.failUpdate
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.GameStore.UpdateSession(ctx, id, upd)
}

func (s *failingGameStore) calls() (score, update int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreCalls, s.updateCalls
}

var fastRetry = app.RetryPolicy{Retries: 1, Initial: time.Millisecond}

func testCatalog() *memory.Catalog {
	return memory.NewCatalog([]domain.Game{
		{ID: "math-adventure", Title: "Math Adventure Quest", Type: domain.GameTypeHybrid, MaxScore: 1000},
		{ID: "word-wizard", Title: "Word Wizard", Type: domain.GameTypeWeb, MaxScore: 500},
		{ID: "science-lab", Title: "Science Lab Explorer", Type: domain.GameTypeNative, Locked: true, RequiredLevel: 5},
	})
}
