package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"kidlearn-service/internal/domain"
)

// Open connects bun to Postgres using the pure-Go pgdriver.
func Open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Store persists game sessions, score records and quiz results with bun.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateSession(ctx context.Context, session domain.GameSession) error {
	row := toGameSessionRow(session)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert game session: %w", err)
	}
	return nil
}

// UpdateSession writes only the fields present in upd.
func (s *Store) UpdateSession(ctx context.Context, sessionID string, upd domain.SessionUpdate) error {
	q := s.db.NewUpdate().Table("game_sessions").Where("id = ?", sessionID)
	fields := 0
	set := func(expr string, v any) {
		q = q.Set(expr, v)
		fields++
	}
	if upd.Status != "" {
		set("status = ?", string(upd.Status))
	}
	if !upd.LastUpdated.IsZero() {
		set("last_updated = ?", upd.LastUpdated)
	}
	if upd.StartedAt != nil {
		set("started_at = ?", *upd.StartedAt)
	}
	if upd.CompletedAt != nil {
		set("completed_at = ?", *upd.CompletedAt)
	}
	if upd.FinalScore != nil {
		set("final_score = ?", *upd.FinalScore)
	}
	if upd.TimeSpentSeconds != nil {
		set("time_spent_seconds = ?", *upd.TimeSpentSeconds)
	}
	if fields == 0 {
		return nil
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("update game session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *Store) SaveScore(ctx context.Context, record domain.GameScoreRecord) error {
	row := toGameScoreRow(record)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert game score: %w", err)
	}
	return nil
}

func (s *Store) ListScores(ctx context.Context, learnerID string, filter domain.ScoreFilter) ([]domain.GameScoreRecord, error) {
	var rows []gameScoreRow
	q := s.db.NewSelect().Model(&rows).Where("learner_id = ?", learnerID)
	if !filter.Since.IsZero() {
		q = q.Where("completed_at >= ?", filter.Since)
	}
	if filter.GameID != "" {
		q = q.Where("game_id = ?", filter.GameID)
	}
	q = q.OrderExpr("completed_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list game scores: %w", err)
	}

	out := make([]domain.GameScoreRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (s *Store) SaveResult(ctx context.Context, result domain.QuizResult) error {
	row := toQuizResultRow(result)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}
	return nil
}

// UpsertQuiz stores quiz content for the pgx loader to read back.
func (s *Store) UpsertQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz %s: %w", quiz.ID, err)
	}
	row := quizRow{ID: quiz.ID, Title: quiz.Title, Data: string(data), UpdatedAt: time.Now().UTC()}
	_, err = s.db.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert quiz %s: %w", quiz.ID, err)
	}
	return nil
}
