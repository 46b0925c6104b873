package app_test

import (
	"context"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidlearn-service/internal/app"
	"kidlearn-service/internal/domain"
	"kidlearn-service/internal/infra/memory"
)

type gameHarness struct {
	clock     *fakeClock
	store     *failingGameStore
	tracker   *memory.SessionTracker
	publisher *memory.Publisher
	service   *app.GameService
	hook      *logtest.Hook
}

func newGameHarness() *gameHarness {
	logger, hook := logtest.NewNullLogger()
	h := &gameHarness{
		clock:     newClock(),
		store:     &failingGameStore{GameStore: memory.NewGameStore()},
		tracker:   memory.NewSessionTracker(),
		publisher: memory.NewPublisher(),
		hook:      hook,
	}
	h.service = app.NewGameService(testCatalog(), h.store, h.tracker, app.Deps{
		Log:       logger,
		Publisher: h.publisher,
		Retry:     fastRetry,
		Now:       h.clock.Now,
		NewID:     sequentialIDs("id"),
	})
	return h
}

func (h *gameHarness) launch(t *testing.T) *app.Recorder {
	t.Helper()
	rec, err := h.service.Launch(context.Background(), "math-adventure", "kid-1")
	require.NoError(t, err)
	return rec
}

func intPtr(v int) *int { return &v }

func TestRecorderCompleteWithDefaults(t *testing.T) {
	h := newGameHarness()
	rec := h.launch(t)
	ctx := context.Background()

	require.NoError(t, rec.Handle(ctx, domain.ScoreEvent{Score: 420}))
	h.clock.Advance(95*time.Second + 700*time.Millisecond)
	require.NoError(t, rec.Handle(ctx, domain.CompleteEvent{}))

	record, ok := rec.Record()
	require.True(t, ok)
	assert.Equal(t, 420, record.Score, "last running score is used")
	assert.Equal(t, 1000, record.MaxScore)
	assert.Equal(t, "Medium", record.Difficulty)
	assert.Equal(t, 95, record.TimeSpentSeconds)
	assert.NotNil(t, record.Achievements)
	assert.Empty(t, record.Achievements)
	assert.Equal(t, rec.SessionID(), record.SessionID)

	scores, _ := h.store.ListScores(ctx, "kid-1", domain.ScoreFilter{})
	require.Len(t, scores, 1)
	session, _ := h.store.Session(rec.SessionID())
	assert.Equal(t, domain.GameStatusCompleted, session.Status)
	require.NotNil(t, session.FinalScore)
	assert.Equal(t, 420, *session.FinalScore)
	assert.False(t, h.tracker.Live(rec.SessionID()))
	assert.Len(t, h.publisher.Events(app.ChannelGameCompleted), 1)
}

func TestRecorderCompleteUsesGameValues(t *testing.T) {
	h := newGameHarness()
	rec := h.launch(t)
	hard := "Hard"

	require.NoError(t, rec.Handle(context.Background(), domain.CompleteEvent{
		Score: intPtr(640), MaxScore: intPtr(800), Difficulty: &hard, Achievements: []string{"First Steps"},
	}))

	record, _ := rec.Record()
	assert.Equal(t, 640, record.Score)
	assert.Equal(t, 800, record.MaxScore)
	assert.Equal(t, "Hard", record.Difficulty)
	assert.Equal(t, []string{"First Steps"}, record.Achievements)
}

func TestRecorderDuplicateCompleteIsNoop(t *testing.T) {
	h := newGameHarness()
	rec := h.launch(t)
	ctx := context.Background()

	require.NoError(t, rec.Handle(ctx, domain.CompleteEvent{Score: intPtr(500)}))
	require.NoError(t, rec.Handle(ctx, domain.CompleteEvent{Score: intPtr(900)}))
	require.NoError(t, rec.Handle(ctx, domain.ScoreEvent{Score: 10}))

	scores, _ := h.store.ListScores(ctx, "kid-1", domain.ScoreFilter{})
	require.Len(t, scores, 1)
	assert.Equal(t, 500, scores[0].Score)
	assert.Equal(t, 500, rec.Score())
}

func TestRecorderTeardownAbandons(t *testing.T) {
	h := newGameHarness()
	rec := h.launch(t)
	require.True(t, h.tracker.Live(rec.SessionID()))

	rec.Teardown(context.Background())

	assert.Equal(t, domain.GameStatusAbandoned, rec.Status())
	_, ok := rec.Record()
	assert.False(t, ok)
	session, _ := h.store.Session(rec.SessionID())
	assert.Equal(t, domain.GameStatusAbandoned, session.Status)
	assert.Nil(t, session.FinalScore)
	scores, _ := h.store.ListScores(context.Background(), "kid-1", domain.ScoreFilter{})
	assert.Empty(t, scores)
	assert.False(t, h.tracker.Live(rec.SessionID()))
}

func TestRecorderRestartKeepsSessionID(t *testing.T) {
	h := newGameHarness()
	rec := h.launch(t)
	ctx := context.Background()
	id := rec.SessionID()

	require.NoError(t, rec.Handle(ctx, domain.ScoreEvent{Score: 300}))
	require.NoError(t, rec.Handle(ctx, domain.CompleteEvent{}))
	h.clock.Advance(time.Minute)
	require.NoError(t, rec.Handle(ctx, domain.RestartEvent{}))

	assert.Equal(t, id, rec.SessionID())
	assert.Equal(t, domain.GameStatusStarted, rec.Status())
	assert.Equal(t, 0, rec.Score())
	assert.True(t, h.tracker.Live(id))

	session, _ := h.store.Session(id)
	assert.Equal(t, domain.GameStatusStarted, session.Status)
	assert.True(t, session.StartedAt.Equal(h.clock.Now()))

	require.NoError(t, rec.Handle(ctx, domain.CompleteEvent{Score: intPtr(700)}))
	scores, _ := h.store.ListScores(ctx, "kid-1", domain.ScoreFilter{})
	assert.Len(t, scores, 2, "a replay completes into a second record")
}

func TestRecorderReplaysKeepEveryCompletion(t *testing.T) {
	h := newGameHarness()
	rec := h.launch(t)
	ctx := context.Background()

	for _, score := range []int{100, 200} {
		require.NoError(t, rec.Handle(ctx, domain.RestartEvent{}))
		require.NoError(t, rec.Handle(ctx, domain.CompleteEvent{Score: intPtr(score)}))
		h.clock.Advance(time.Minute)
	}

	scores, err := h.store.ListScores(ctx, "kid-1", domain.ScoreFilter{})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, 200, scores[0].Score)
	assert.Equal(t, 100, scores[1].Score)
	assert.NotEqual(t, scores[0].ID, scores[1].ID)
	for _, s := range scores {
		assert.Equal(t, rec.SessionID(), s.SessionID)
	}
	scoreCalls, _ := h.store.calls()
	assert.Equal(t, 2, scoreCalls, "no score write was retried")
}

func TestRecorderAttemptsBothWritesWhenOneFails(t *testing.T) {
	h := newGameHarness()
	rec := h.launch(t)
	h.store.failScore = true

	require.NoError(t, rec.Handle(context.Background(), domain.CompleteEvent{Score: intPtr(100)}))

	scoreCalls, updateCalls := h.store.calls()
	assert.Equal(t, 2, scoreCalls, "score write retried once")
	assert.Equal(t, 1, updateCalls, "session update still attempted")
	session, _ := h.store.Session(rec.SessionID())
	assert.Equal(t, domain.GameStatusCompleted, session.Status)
	assert.Equal(t, domain.GameStatusCompleted, rec.Status())

	var ops []any
	for _, e := range h.hook.AllEntries() {
		if e.Message == "best-effort write failed" {
			ops = append(ops, e.Data["op"])
			assert.Equal(t, rec.SessionID(), e.Data["session_id"])
		}
	}
	assert.Equal(t, []any{"save_game_score"}, ops)
}

func TestRecorderRunTearsDownWhenChannelCloses(t *testing.T) {
	h := newGameHarness()
	rec := h.launch(t)
	updates, cancel := rec.Subscribe()
	defer cancel()

	events := make(chan domain.GameEvent, 4)
	events <- domain.ScoreEvent{Score: 50}
	events <- domain.AchievementEvent{Title: "Quick Thinker"}
	events <- domain.ProgressEvent{Data: []byte(`{"level":2}`)}
	close(events)

	require.NoError(t, rec.Run(context.Background(), events))

	var kinds []app.UpdateKind
	for len(updates) > 0 {
		kinds = append(kinds, (<-updates).Kind)
	}
	assert.Equal(t, []app.UpdateKind{app.UpdateScore, app.UpdateAchievement, app.UpdateAbandoned}, kinds)
	assert.Equal(t, domain.GameStatusAbandoned, rec.Status())
}
