package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"survey-match-service/internal/app"
	"survey-match-service/internal/config"
	"survey-match-service/internal/domain"
	"survey-match-service/internal/logging"
)

// NewMatchCmd prints the ranked matches for a user from the configured store.
func NewMatchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "match <username>",
		Short: "Rank stored users by answer overlap with <username>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.Context(), *configPath, args[0], cmd.OutOrStdout())
		},
	}
}

func runMatch(ctx context.Context, configPath, username string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	deps, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	log := logging.New(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	service := app.NewSurveyService(deps.sessions, deps.questions, app.NewUserStore(deps.users), log)
	matches, err := service.Matches(ctx, username)
	if err != nil {
		return err
	}
	return printMatches(out, matches.Entries)
}

func printMatches(out io.Writer, matches []domain.Match) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tMATCHES")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%d\n", m.Username, m.Score)
	}
	return tw.Flush()
}
