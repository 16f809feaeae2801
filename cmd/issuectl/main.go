package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/issuetracker/backend/internal/config"
	"github.com/issuetracker/backend/internal/logging"
	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/repository"
	"github.com/issuetracker/backend/internal/service"
)

var configFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Fatal("issuectl failed", "error", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "issuectl",
		Short:         "Operator tasks against the issue tracker database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json or toml)")

	root.AddCommand(&cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import issues from a CSV file with a header row",
		Long: `Import issues from a CSV file. Recognised columns are title, description,
status and assignee_id. Rows without a title or with a non-numeric
assignee_id are reported and skipped; the rest are created together.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return withServices(cmd.Context(), func(ctx context.Context, s services) error {
				return runImport(ctx, s.issues, f, cmd.OutOrStdout())
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "report",
		Short: "Print the top-assignees and resolution-time reports as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, s services) error {
				return runReport(ctx, s.reports, cmd.OutOrStdout())
			})
		},
	})
	return root
}

type services struct {
	issues  service.IssueService
	reports service.ReportService
}

func withServices(ctx context.Context, fn func(ctx context.Context, s services) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel)

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	return fn(ctx, services{
		issues: service.NewIssueService(
			repository.NewPgStore(pool),
			repository.NewPgIssueRepository(pool),
			repository.NewPgCommentRepository(pool),
			service.IssueServiceOptions{},
		),
		reports: service.NewReportService(repository.NewPgReportRepository(pool)),
	})
}

func runImport(ctx context.Context, svc service.IssueService, in io.Reader, out io.Writer) error {
	result, err := service.ImportCSV(ctx, svc, in)
	if err != nil {
		return err
	}
	return writeJSON(out, result)
}

type report struct {
	TopAssignees             []model.AssigneeCount `json:"top_assignees"`
	AverageResolutionTime    *string               `json:"average_resolution_time"`
	AverageResolutionSeconds *float64              `json:"average_resolution_seconds"`
	ResolvedCount            int                   `json:"resolved_count"`
}

func runReport(ctx context.Context, svc service.ReportService, out io.Writer) error {
	counts, err := svc.TopAssignees(ctx)
	if err != nil {
		return err
	}
	stats, err := svc.AverageResolutionTime(ctx)
	if err != nil {
		return err
	}

	r := report{TopAssignees: counts, ResolvedCount: stats.ResolvedCount}
	if stats.Average != nil {
		text := stats.Average.String()
		secs := stats.Average.Seconds()
		r.AverageResolutionTime = &text
		r.AverageResolutionSeconds = &secs
	}
	return writeJSON(out, r)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
