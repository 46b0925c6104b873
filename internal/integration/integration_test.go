package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"kidlearn-service/internal/app"
	"kidlearn-service/internal/domain"
	"kidlearn-service/internal/infra/postgres"
	pgmigrations "kidlearn-service/internal/infra/postgres/migrations"
	infraredis "kidlearn-service/internal/infra/redis"
)

func TestQuizAndGameEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.Open(pgURL)
	defer db.Close()
	migrateDB(t, ctx, db)
	store := postgres.NewStore(db)
	if err := store.UpsertQuiz(ctx, sampleQuiz()); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	sub := redisClient.Subscribe(ctx, "kidlearn:"+app.ChannelGameCompleted)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	deps := app.Deps{Publisher: infraredis.NewPublisher(redisClient, "kidlearn:")}
	quizRepo := infraredis.NewQuizRepository(redisClient, postgres.NewQuizLoader(pool), 5*time.Minute)
	quizService := app.NewQuizService(quizRepo, store, deps)

	attempt, err := quizService.StartAttempt(ctx, "addition-basics", "kid-1")
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	for _, option := range []int{1, 0} {
		if err := attempt.Select(option); err != nil {
			t.Fatalf("select: %v", err)
		}
		if _, err := attempt.Check(); err != nil {
			t.Fatalf("check: %v", err)
		}
		if _, err := attempt.Next(); err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	result, err := attempt.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.ScorePercent != 50 || result.TotalPoints != 10 {
		t.Fatalf("unexpected result: %+v", result)
	}
	quizService.RecordResult(ctx, result)

	var savedResults int
	if err := db.NewSelect().Table("quiz_results").ColumnExpr("count(*)").Where("learner_id = ?", "kid-1").Scan(ctx, &savedResults); err != nil {
		t.Fatalf("count results: %v", err)
	}
	if savedResults != 1 {
		t.Fatalf("expected one stored quiz result, got %d", savedResults)
	}

	catalog := staticCatalog{game: domain.Game{ID: "math-adventure", Title: "Math Adventure Quest", MaxScore: 1000}}
	tracker := infraredis.NewSessionTracker(redisClient, time.Hour)
	gameService := app.NewGameService(catalog, store, tracker, deps)

	rec, err := gameService.Launch(ctx, "math-adventure", "kid-1")
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	score := 640
	if err := rec.Handle(ctx, domain.CompleteEvent{Score: &score, Achievements: []string{"First Steps"}}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	scores, stats, err := gameService.History(ctx, "kid-1", domain.ScoreFilter{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(scores) != 1 || scores[0].Score != 640 || len(scores[0].Achievements) != 1 {
		t.Fatalf("unexpected scores: %+v", scores)
	}
	if stats.BestScore != 640 || stats.FavoriteGame != "Math Adventure Quest" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if n, _ := redisClient.Exists(ctx, "game:session:"+rec.SessionID()).Result(); n != 0 {
		t.Fatalf("expected session marker cleared")
	}

	select {
	case msg := <-sub.Channel():
		if !strings.Contains(msg.Payload, rec.SessionID()) {
			t.Fatalf("unexpected event payload: %s", msg.Payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for completion event")
	}

	if err := rec.Handle(ctx, domain.RestartEvent{}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	replay := 820
	if err := rec.Handle(ctx, domain.CompleteEvent{Score: &replay}); err != nil {
		t.Fatalf("complete replay: %v", err)
	}
	scores, _, err = gameService.History(ctx, "kid-1", domain.ScoreFilter{GameID: "math-adventure"})
	if err != nil {
		t.Fatalf("history after replay: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected both completions stored, got %+v", scores)
	}
	for _, s := range scores {
		if s.SessionID != rec.SessionID() {
			t.Fatalf("expected replay under the same session, got %+v", s)
		}
	}
}

type staticCatalog struct {
	game domain.Game
}

func (c staticCatalog) Games(context.Context) ([]domain.Game, error) {
	return []domain.Game{c.game}, nil
}

func (c staticCatalog) Game(_ context.Context, id string) (domain.Game, error) {
	if id != c.game.ID {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return c.game, nil
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "kidlearn", "POSTGRES_PASSWORD": "kidlearnpass", "POSTGRES_DB": "kidlearn"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://kidlearn:kidlearnpass@%s:%s/kidlearn?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "addition-basics",
		Title: "Addition Basics",
		Questions: []domain.QuizQuestion{
			{
				ID: "1", Prompt: "What is 2 + 3?", Options: []string{"4", "5", "6", "7"},
				CorrectAnswer: 1, Explanation: "2 + 3 = 5", Difficulty: domain.DifficultyEasy, Points: 10,
			},
			{
				ID: "2", Prompt: "What is 4 + 1?", Options: []string{"3", "4", "5", "6"},
				CorrectAnswer: 2, Explanation: "4 + 1 = 5", Difficulty: domain.DifficultyEasy, Points: 10,
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
