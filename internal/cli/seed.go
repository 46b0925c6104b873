package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"kidlearn-service/internal/app"
	"kidlearn-service/internal/config"
	"kidlearn-service/internal/infra/memory"
	"kidlearn-service/internal/infra/postgres"
	"kidlearn-service/internal/logger"
)

// NewSeedCmd loads YAML quiz files into Postgres.
func NewSeedCmd(configPath, level *string) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate quiz YAML files and upsert them into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(serviceName, pick(*level, cfg.Log.Level))
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			quizDir := pick(dir, cfg.Quiz.Dir)
			if quizDir == "" {
				return fmt.Errorf("no quiz directory given")
			}

			quizzes, err := memory.LoadQuizDir(quizDir)
			if err != nil {
				return err
			}
			validator := app.NewQuizValidator()
			for id, quiz := range quizzes {
				if err := validator.Validate(quiz); err != nil {
					return fmt.Errorf("quiz %s: %w", id, err)
				}
			}

			db := postgres.Open(cfg.Postgres.URL)
			defer db.Close()
			if err := runMigrations(cmd.Context(), db, log); err != nil {
				return err
			}
			store := postgres.NewStore(db)
			for id, quiz := range quizzes {
				if err := store.UpsertQuiz(cmd.Context(), quiz); err != nil {
					return err
				}
				log.WithFields(logrus.Fields{
					"quiz_id":   id,
					"questions": len(quiz.Questions),
				}).Info("quiz seeded")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of quiz YAML files (defaults to quiz.dir)")
	return cmd
}
