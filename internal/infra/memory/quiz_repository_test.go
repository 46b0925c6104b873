package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"kidlearn-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{
			"addition-basics": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "addition-basics"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if _, err := repo.GetQuiz(context.Background(), "addition-basics"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}

	repo.Invalidate("addition-basics")
	if _, err := repo.GetQuiz(context.Background(), "addition-basics"); err != nil {
		t.Fatalf("get quiz 3: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.count())
	}
}

func TestQuizRepositoryExpires(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{"addition-basics": sampleQuiz()}),
	}
	repo := NewQuizRepository(loader, time.Minute).WithClock(func() time.Time { return now })

	_, _ = repo.GetQuiz(context.Background(), "addition-basics")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuiz(context.Background(), "addition-basics")

	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestQuizRepositoryNotFound(t *testing.T) {
	repo := NewQuizRepository(NewStaticQuizLoader(nil), time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadQuizDir(t *testing.T) {
	dir := t.TempDir()
	raw := `
id: shapes
title: Shapes
questions:
  - id: "1"
    question: How many sides does a triangle have?
    options: ["2", "3", "4"]
    correctAnswer: 1
    explanation: Tri means three.
    difficulty: Easy
    points: 10
    hint: Count the corners!
`
	if err := os.WriteFile(filepath.Join(dir, "shapes.yaml"), []byte(raw), 0o600); err != nil {
		t.Fatalf("write quiz: %v", err)
	}

	quizzes, err := LoadQuizDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	quiz, ok := quizzes["shapes"]
	if !ok || len(quiz.Questions) != 1 {
		t.Fatalf("expected shapes quiz, got %+v", quizzes)
	}
	q := quiz.Questions[0]
	if q.CorrectAnswer != 1 || q.Points != 10 || q.Hint != "Count the corners!" || q.Difficulty != domain.DifficultyEasy {
		t.Fatalf("unexpected question: %+v", q)
	}
}

type countingLoader struct {
	QuizLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID: "addition-basics",
		Questions: []domain.QuizQuestion{
			{
				ID:            "1",
				Prompt:        "What is 2 + 3?",
				Options:       []string{"4", "5", "6", "7"},
				CorrectAnswer: 1,
				Difficulty:    domain.DifficultyEasy,
				Points:        10,
			},
		},
	}
}
