package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"survey-match-service/internal/config"
	pgstore "survey-match-service/internal/infra/postgres"
	"survey-match-service/internal/logging"
)

// NewImportQuestionsCmd loads a survey.json dataset into Postgres.
func NewImportQuestionsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import-questions <survey.json>",
		Short: "Validate a question dataset and store it in Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportQuestions(cmd.Context(), *configPath, args[0])
		},
	}
}

func runImportQuestions(ctx context.Context, configPath, path string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	log := logging.New(os.Stderr, cfg.Log.Format, cfg.Log.Level)

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return err
	}

	deps, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	n, err := pgstore.NewQuestionBank(deps.pgDocs).ImportQuestions(ctx, raw)
	if err != nil {
		return err
	}
	if err := deps.invalidateQuestions(ctx); err != nil {
		return err
	}
	log.Info(ctx, "questions imported", "count", n, "source", path)
	return nil
}
