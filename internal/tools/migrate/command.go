package migrate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/debt-ledger-service/internal/di"
	"github.com/sandeepkv93/debt-ledger-service/internal/tools/common"
	"github.com/sandeepkv93/debt-ledger-service/internal/tools/ui"
)

// RunnerFactory opens a migration runner after the env file has been loaded.
type RunnerFactory func() (*di.MigrationRunner, error)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
	open    RunnerFactory
}

func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(di.InitializeMigrationRunner)
}

func NewRootCommandWith(open RunnerFactory) *cobra.Command {
	opts := &options{open: open}
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Database migration tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newCommand(opts, "up", "Apply schema migrations", up),
		newCommand(opts, "status", "Report per-table schema status", status),
		newCommand(opts, "plan", "Show migration plan (dry-run)", plan),
	)
	return cmd
}

type step func(ctx context.Context, r *di.MigrationRunner) ([]string, error)

func newCommand(opts *options, name, short string, fn step) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner := common.Runner{Tool: "migrate", CI: opts.ci, Timeout: opts.timeout, UI: ui.Run}
			details, err := runner.Run(name, func(ctx context.Context) ([]string, error) {
				if err := common.LoadEnvFile(opts.envFile); err != nil {
					return nil, err
				}
				r, err := opts.open()
				if err != nil {
					return nil, err
				}
				defer func() { _ = r.Close() }()
				return fn(ctx, r)
			})
			if opts.ci {
				common.WriteCIResult(cmd.OutOrStdout(), err == nil, "migrate "+name, details, err)
			}
			return err
		},
	}
}

func up(ctx context.Context, r *di.MigrationRunner) ([]string, error) {
	pending, err := r.Plan()
	if err != nil {
		return nil, err
	}
	if err := r.Up(); err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return []string{"schema already up to date"}, nil
	}
	return append([]string{fmt.Sprintf("applied %d change(s)", len(pending))}, pending...), nil
}

func status(ctx context.Context, r *di.MigrationRunner) ([]string, error) {
	sqlDB, err := r.DB().DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	statuses, err := r.Status()
	if err != nil {
		return nil, err
	}
	details := make([]string, 0, len(statuses))
	for _, s := range statuses {
		switch {
		case s.UpToDate():
			details = append(details, s.Table+": up to date")
		case !s.Exists:
			details = append(details, s.Table+": missing")
		default:
			details = append(details, s.Table+": missing columns "+strings.Join(s.MissingColumns, ", "))
		}
	}
	return details, nil
}

func plan(_ context.Context, r *di.MigrationRunner) ([]string, error) {
	steps, err := r.Plan()
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return []string{"nothing to apply"}, nil
	}
	return append(steps, "no mutation executed in plan mode"), nil
}
