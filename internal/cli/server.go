package cli

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"kidlearn-service/internal/app"
	"kidlearn-service/internal/config"
	"kidlearn-service/internal/infra/memory"
	"kidlearn-service/internal/infra/postgres"
	infraredis "kidlearn-service/internal/infra/redis"
	"kidlearn-service/internal/logger"
	"kidlearn-service/internal/metrics"
	transport "kidlearn-service/internal/transport/http"
)

const eventChannelPrefix = "kidlearn:"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port, level *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz and game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, *level)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag, levelFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(serviceName, pick(levelFlag, cfg.Log.Level))

	finalPort := pick(portFlag, cfg.Server.Port, "8080")

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var (
		pool    *pgxpool.Pool
		pgStore *postgres.Store
	)
	if cfg.Postgres.URL != "" {
		db := postgres.Open(cfg.Postgres.URL)
		defer db.Close()
		if err := runMigrations(ctx, db, log); err != nil {
			return err
		}
		pgStore = postgres.NewStore(db)

		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	loader, err := quizLoader(cfg, pool, log)
	if err != nil {
		return err
	}
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var (
		results app.QuizResultStore
		games   app.GameStore
	)
	if pgStore != nil {
		results, games = pgStore, pgStore
	} else {
		results, games = memory.NewResultStore(), memory.NewGameStore()
	}

	var (
		tracker   app.SessionTracker
		publisher app.EventPublisher
	)
	if redisClient != nil {
		tracker = infraredis.NewSessionTracker(redisClient, sessionTTL)
		publisher = infraredis.NewPublisher(redisClient, eventChannelPrefix)
	} else {
		tracker = memory.NewSessionTracker()
	}

	catalog, err := gameCatalog(cfg, log)
	if err != nil {
		return err
	}

	retry := app.DefaultRetryPolicy
	if cfg.Persistence.Retries > 0 {
		retry.Retries = cfg.Persistence.Retries
	}
	retry.Initial = config.TTLDuration(cfg.Persistence.Backoff, retry.Initial)

	m := metrics.New()
	deps := app.Deps{
		Log:       log,
		Metrics:   m,
		Publisher: publisher,
		Retry:     retry,
	}
	quizService := app.NewQuizService(quizRepo, results, deps)
	gameService := app.NewGameService(catalog, games, tracker, deps)

	router := transport.NewRouter(transport.Handlers{
		Quiz:    transport.NewQuizHandler(quizService, log),
		Game:    transport.NewGameHandler(gameService, log),
		API:     transport.NewAPIHandler(gameService, log),
		Metrics: m,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":     finalPort,
			"redis":    redisClient != nil,
			"postgres": pgStore != nil,
		}).Info("starting kidlearn service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// quizLoader prefers Postgres, then the YAML quiz directory, then the built-in sample.
func quizLoader(cfg config.Config, pool *pgxpool.Pool, log logrus.FieldLogger) (memory.QuizLoader, error) {
	if pool != nil {
		return postgres.NewQuizLoader(pool), nil
	}
	if cfg.Quiz.Dir != "" {
		quizzes, err := memory.LoadQuizDir(cfg.Quiz.Dir)
		if err != nil {
			return nil, err
		}
		if len(quizzes) > 0 {
			log.WithField("quizzes", len(quizzes)).Info("serving quizzes from files")
			return memory.NewStaticQuizLoader(quizzes), nil
		}
	}
	log.Warn("no quiz source configured, serving the built-in sample")
	return memory.NewStaticQuizLoader(sampleQuizzes()), nil
}

func gameCatalog(cfg config.Config, log logrus.FieldLogger) (*memory.Catalog, error) {
	if cfg.Game.CatalogPath != "" {
		catalog, err := memory.LoadCatalogFile(cfg.Game.CatalogPath)
		if err == nil {
			return catalog, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.WithField("path", cfg.Game.CatalogPath).Warn("game catalog file missing, using built-in catalog")
	}
	return memory.NewCatalog(sampleGames()), nil
}
