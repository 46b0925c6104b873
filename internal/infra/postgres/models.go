package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"kidlearn-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID        string    `bun:"id,pk"`
	Title     string    `bun:"title"`
	Data      string    `bun:"data,type:jsonb"`
	UpdatedAt time.Time `bun:"updated_at"`
}

type gameSessionRow struct {
	bun.BaseModel `bun:"table:game_sessions"`

	ID               string     `bun:"id,pk"`
	GameID           string     `bun:"game_id"`
	LearnerID        string     `bun:"learner_id"`
	Status           string     `bun:"status"`
	StartedAt        time.Time  `bun:"started_at"`
	LastUpdated      time.Time  `bun:"last_updated"`
	CompletedAt      *time.Time `bun:"completed_at"`
	FinalScore       *int       `bun:"final_score"`
	TimeSpentSeconds *int       `bun:"time_spent_seconds"`
}

func toGameSessionRow(s domain.GameSession) gameSessionRow {
	return gameSessionRow{
		ID:               s.ID,
		GameID:           s.GameID,
		LearnerID:        s.LearnerID,
		Status:           string(s.Status),
		StartedAt:        s.StartedAt,
		LastUpdated:      s.LastUpdated,
		CompletedAt:      s.CompletedAt,
		FinalScore:       s.FinalScore,
		TimeSpentSeconds: s.TimeSpentSeconds,
	}
}

type gameScoreRow struct {
	bun.BaseModel `bun:"table:game_scores"`

	ID               string    `bun:"id,pk"`
	GameID           string    `bun:"game_id"`
	LearnerID        string    `bun:"learner_id"`
	Score            int       `bun:"score"`
	MaxScore         int       `bun:"max_score"`
	TimeSpentSeconds int       `bun:"time_spent_seconds"`
	CompletedAt      time.Time `bun:"completed_at"`
	Difficulty       string    `bun:"difficulty"`
	Achievements     []string  `bun:"achievements,type:jsonb"`
	SessionID        string    `bun:"session_id"`
}

func toGameScoreRow(r domain.GameScoreRecord) gameScoreRow {
	achievements := r.Achievements
	if achievements == nil {
		achievements = []string{}
	}
	return gameScoreRow{
		ID:               r.ID,
		GameID:           r.GameID,
		LearnerID:        r.LearnerID,
		Score:            r.Score,
		MaxScore:         r.MaxScore,
		TimeSpentSeconds: r.TimeSpentSeconds,
		CompletedAt:      r.CompletedAt,
		Difficulty:       r.Difficulty,
		Achievements:     achievements,
		SessionID:        r.SessionID,
	}
}

func (r gameScoreRow) record() domain.GameScoreRecord {
	achievements := r.Achievements
	if achievements == nil {
		achievements = []string{}
	}
	return domain.GameScoreRecord{
		ID:               r.ID,
		GameID:           r.GameID,
		LearnerID:        r.LearnerID,
		Score:            r.Score,
		MaxScore:         r.MaxScore,
		TimeSpentSeconds: r.TimeSpentSeconds,
		CompletedAt:      r.CompletedAt,
		Difficulty:       r.Difficulty,
		Achievements:     achievements,
		SessionID:        r.SessionID,
	}
}

type quizResultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	AttemptID      string    `bun:"attempt_id,pk"`
	QuizID         string    `bun:"quiz_id"`
	LearnerID      string    `bun:"learner_id"`
	Score          int       `bun:"score"`
	TotalQuestions int       `bun:"total_questions"`
	CorrectAnswers int       `bun:"correct_answers"`
	TotalPoints    int       `bun:"total_points"`
	Grade          string    `bun:"grade"`
	Achievements   []string  `bun:"achievements,type:jsonb"`
	TimeSpent      int       `bun:"time_spent"`
	CompletedAt    time.Time `bun:"completed_at,pk"`
}

func toQuizResultRow(r domain.QuizResult) quizResultRow {
	achievements := r.Achievements
	if achievements == nil {
		achievements = []string{}
	}
	return quizResultRow{
		AttemptID:      r.AttemptID,
		QuizID:         r.QuizID,
		LearnerID:      r.LearnerID,
		Score:          r.ScorePercent,
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
		TotalPoints:    r.TotalPoints,
		Grade:          r.Grade,
		Achievements:   achievements,
		TimeSpent:      r.TimeSpentMinutes,
		CompletedAt:    r.CompletedAt,
	}
}
