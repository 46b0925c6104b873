package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"kidlearn-service/internal/domain"
)

const (
	defaultMaxScore   = 1000
	defaultDifficulty = string(domain.DifficultyMedium)
	teardownTimeout   = 5 * time.Second
)

// UpdateKind tags a RecorderUpdate.
type UpdateKind string

const (
	UpdateScore       UpdateKind = "score"
	UpdateAchievement UpdateKind = "achievement"
	UpdateCompleted   UpdateKind = "completed"
	UpdateAbandoned   UpdateKind = "abandoned"
	UpdateRestarted   UpdateKind = "restarted"
)

// RecorderUpdate is pushed to subscribers whenever something worth showing happens.
type RecorderUpdate struct {
	Kind        UpdateKind               `json:"kind"`
	SessionID   string                   `json:"sessionId"`
	Status      domain.GameStatus        `json:"status"`
	Score       int                      `json:"score"`
	Achievement *domain.AchievementEvent `json:"achievement,omitempty"`
	Record      *domain.GameScoreRecord  `json:"record,omitempty"`
}

// Recorder tracks one hosted game session from launch to completion or abandonment.
type Recorder struct {
	sessionID string
	gameID    string
	learnerID string
	store     GameStore
	tracker   SessionTracker
	deps      Deps

	mu          sync.Mutex
	status      domain.GameStatus
	startedAt   time.Time
	score       int
	record      *domain.GameScoreRecord
	subscribers map[chan RecorderUpdate]struct{}
}

func newRecorder(session domain.GameSession, store GameStore, tracker SessionTracker, deps Deps) *Recorder {
	return &Recorder{
		sessionID:   session.ID,
		gameID:      session.GameID,
		learnerID:   session.LearnerID,
		store:       store,
		tracker:     tracker,
		deps:        deps,
		status:      session.Status,
		startedAt:   session.StartedAt,
		subscribers: make(map[chan RecorderUpdate]struct{}),
	}
}

// SessionID is stable across restarts.
func (r *Recorder) SessionID() string { return r.sessionID }

// Status returns the current lifecycle status.
func (r *Recorder) Status() domain.GameStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Score returns the last known running score.
func (r *Recorder) Score() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.score
}

// Record returns the score record written on completion, if any.
func (r *Recorder) Record() (domain.GameScoreRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record == nil {
		return domain.GameScoreRecord{}, false
	}
	return *r.record, true
}

func (r *Recorder) fields() logrus.Fields {
	return logrus.Fields{
		"session_id": r.sessionID,
		"game_id":    r.gameID,
		"learner_id": r.learnerID,
	}
}

// Run consumes events in order until the channel closes or ctx ends, then tears
// the session down.
func (r *Recorder) Run(ctx context.Context, events <-chan domain.GameEvent) error {
	for {
		select {
		case <-ctx.Done():
			r.teardownDetached(ctx)
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				r.teardownDetached(ctx)
				return nil
			}
			if err := r.Handle(ctx, ev); err != nil {
				r.deps.Log.WithFields(r.fields()).WithError(err).Warn("game event rejected")
			}
		}
	}
}

func (r *Recorder) teardownDetached(ctx context.Context) {
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
	defer cancel()
	r.Teardown(tctx)
}

// Handle applies one event. Only complete and restart transition the session;
// everything after a terminal status except restart is ignored.
func (r *Recorder) Handle(ctx context.Context, ev domain.GameEvent) error {
	switch e := ev.(type) {
	case domain.ScoreEvent:
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.status.Terminal() {
			return nil
		}
		r.score = e.Score
		r.broadcastLocked(RecorderUpdate{Kind: UpdateScore})
	case domain.ProgressEvent:
		r.deps.Log.WithFields(r.fields()).WithField("progress", string(e.Data)).Debug("game progress")
	case domain.AchievementEvent:
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.status.Terminal() {
			return nil
		}
		achievement := e
		r.broadcastLocked(RecorderUpdate{Kind: UpdateAchievement, Achievement: &achievement})
	case domain.CompleteEvent:
		r.complete(ctx, e)
	case domain.RestartEvent:
		r.Restart(ctx)
	default:
		return fmt.Errorf("%w: %T", domain.ErrUnknownMessage, ev)
	}
	return nil
}

func (r *Recorder) complete(ctx context.Context, e domain.CompleteEvent) {
	r.mu.Lock()
	if r.status.Terminal() {
		r.mu.Unlock()
		r.deps.Log.WithFields(r.fields()).Debug("duplicate complete ignored")
		return
	}

	now := r.deps.Now()
	timeSpent := int(now.Sub(r.startedAt) / time.Second)
	record := domain.GameScoreRecord{
		ID:               r.deps.NewID(),
		GameID:           r.gameID,
		LearnerID:        r.learnerID,
		Score:            r.score,
		MaxScore:         defaultMaxScore,
		TimeSpentSeconds: timeSpent,
		CompletedAt:      now,
		Difficulty:       defaultDifficulty,
		Achievements:     []string{},
		SessionID:        r.sessionID,
	}
	if e.Score != nil {
		record.Score = *e.Score
	}
	if e.MaxScore != nil {
		record.MaxScore = *e.MaxScore
	}
	if e.Difficulty != nil && *e.Difficulty != "" {
		record.Difficulty = *e.Difficulty
	}
	if e.Achievements != nil {
		record.Achievements = append([]string{}, e.Achievements...)
	}

	r.status = domain.GameStatusCompleted
	r.score = record.Score
	r.record = &record
	snapshot := record
	r.broadcastLocked(RecorderUpdate{Kind: UpdateCompleted, Record: &snapshot})
	r.mu.Unlock()

	r.deps.Metrics.GameSession(string(domain.GameStatusCompleted))
	update := domain.SessionUpdate{
		Status:           domain.GameStatusCompleted,
		LastUpdated:      now,
		CompletedAt:      &now,
		FinalScore:       &record.Score,
		TimeSpentSeconds: &record.TimeSpentSeconds,
	}
	fields := r.fields()
	fields["record_id"] = record.ID

	// Both writes are always attempted; one failing does not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		return bestEffort(ctx, r.deps.Log, r.deps.Metrics, r.deps.Retry, "save_game_score", fields, func(ctx context.Context) error {
			return r.store.SaveScore(ctx, record)
		})
	})
	g.Go(func() error {
		return bestEffort(ctx, r.deps.Log, r.deps.Metrics, r.deps.Retry, "update_game_session", fields, func(ctx context.Context) error {
			return r.store.UpdateSession(ctx, r.sessionID, update)
		})
	})
	_ = g.Wait()

	r.clearTracker(ctx)
	_ = bestEffort(ctx, r.deps.Log, r.deps.Metrics, r.deps.Retry, "publish_game_score", fields, func(ctx context.Context) error {
		return r.deps.Publisher.Publish(ctx, ChannelGameCompleted, record)
	})

	r.deps.Log.WithFields(fields).WithFields(logrus.Fields{
		"score":      record.Score,
		"time_spent": record.TimeSpentSeconds,
	}).Info("game session completed")
}

// Teardown abandons a session that never completed. No score record is written.
func (r *Recorder) Teardown(ctx context.Context) {
	r.mu.Lock()
	if r.status.Terminal() {
		r.mu.Unlock()
		return
	}
	r.status = domain.GameStatusAbandoned
	r.broadcastLocked(RecorderUpdate{Kind: UpdateAbandoned})
	r.mu.Unlock()

	r.deps.Metrics.GameSession(string(domain.GameStatusAbandoned))
	update := domain.SessionUpdate{
		Status:      domain.GameStatusAbandoned,
		LastUpdated: r.deps.Now(),
	}
	_ = bestEffort(ctx, r.deps.Log, r.deps.Metrics, r.deps.Retry, "abandon_game_session", r.fields(), func(ctx context.Context) error {
		return r.store.UpdateSession(ctx, r.sessionID, update)
	})
	r.clearTracker(ctx)
	r.deps.Log.WithFields(r.fields()).Info("game session abandoned")
}

// Restart zeroes the running score and re-enters started with a fresh start time.
// The session id is kept.
func (r *Recorder) Restart(ctx context.Context) {
	now := r.deps.Now()
	r.mu.Lock()
	r.status = domain.GameStatusStarted
	r.startedAt = now
	r.score = 0
	r.record = nil
	r.broadcastLocked(RecorderUpdate{Kind: UpdateRestarted})
	r.mu.Unlock()

	r.deps.Metrics.GameSession(string(domain.GameStatusStarted))
	update := domain.SessionUpdate{
		Status:      domain.GameStatusStarted,
		LastUpdated: now,
		StartedAt:   &now,
	}
	_ = bestEffort(ctx, r.deps.Log, r.deps.Metrics, r.deps.Retry, "restart_game_session", r.fields(), func(ctx context.Context) error {
		return r.store.UpdateSession(ctx, r.sessionID, update)
	})
	if err := r.tracker.Mark(ctx, r.sessionID); err != nil {
		r.deps.Log.WithFields(r.fields()).WithError(err).Warn("mark session live failed")
	}
}

func (r *Recorder) clearTracker(ctx context.Context) {
	if err := r.tracker.Clear(ctx, r.sessionID); err != nil {
		r.deps.Log.WithFields(r.fields()).WithError(err).Warn("clear session marker failed")
	}
}

// Subscribe returns a channel of updates. The caller must invoke cancel to avoid leaks.
func (r *Recorder) Subscribe() (<-chan RecorderUpdate, func()) {
	ch := make(chan RecorderUpdate, 8)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (r *Recorder) broadcastLocked(update RecorderUpdate) {
	update.SessionID = r.sessionID
	update.Status = r.status
	update.Score = r.score
	for ch := range r.subscribers {
		select {
		case ch <- update:
		default:
			// Drop the oldest update so a slow reader never blocks the game.
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}
