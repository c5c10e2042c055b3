package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/debt-ledger-service/internal/config"
	"github.com/sandeepkv93/debt-ledger-service/internal/database"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
	"github.com/sandeepkv93/debt-ledger-service/internal/security"
	"github.com/sandeepkv93/debt-ledger-service/internal/service"
	"github.com/sandeepkv93/debt-ledger-service/internal/tools/common"
	"github.com/sandeepkv93/debt-ledger-service/internal/tools/ui"
)

// StoreFactory returns the loaded config and an open database.
type StoreFactory func() (*config.Config, *gorm.DB, error)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
	open    StoreFactory
}

func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(loadConfigDB)
}

func NewRootCommandWith(open StoreFactory) *cobra.Command {
	opts := &options{open: open}
	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Database seed and maintenance tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newDemoCommand(opts), newVerifyEmailCommand(opts), newPurgeCodesCommand(opts))
	return cmd
}

func newDemoCommand(opts *options) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Create a verified demo user with sample contacts and debts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, opts, "demo", func(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
				if len(password) < 8 {
					return nil, errors.New("password must be at least 8 characters")
				}
				if err := database.Migrate(db); err != nil {
					return nil, err
				}
				hash, err := security.NewPasswordHasher(cfg.AuthBcryptCost).Hash(password)
				if err != nil {
					return nil, err
				}
				report, err := database.SeedDemo(ctx, db, database.DemoSeedInput{
					Email:        strings.ToLower(strings.TrimSpace(email)),
					FullName:     name,
					PasswordHash: hash,
				})
				if err != nil {
					return nil, err
				}
				if report.Noop {
					return []string{"demo data already present for " + email}, nil
				}
				return []string{
					fmt.Sprintf("user id: %d (created: %t)", report.UserID, report.CreatedUser),
					fmt.Sprintf("contacts created: %d", report.CreatedContacts),
					fmt.Sprintf("debts created: %d", report.CreatedDebts),
				}, nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "demo@example.com", "demo user email")
	cmd.Flags().StringVar(&password, "password", "demo-password", "demo user password")
	cmd.Flags().StringVar(&name, "name", "Demo User", "demo user full name")
	return cmd
}

func newVerifyEmailCommand(opts *options) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Mark an account's email as verified without a code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, opts, "verify-email", func(ctx context.Context, _ *config.Config, db *gorm.DB) ([]string, error) {
				normalized := strings.ToLower(strings.TrimSpace(email))
				if normalized == "" {
					return nil, errors.New("email is required")
				}
				users := repository.NewUserRepository(db)
				user, err := users.FindByEmail(ctx, normalized)
				if err != nil {
					return nil, err
				}
				err = users.MarkVerified(ctx, user.ID, time.Now().UTC())
				switch {
				case errors.Is(err, repository.ErrUserAlreadyVerified):
					return []string{"already verified: " + normalized}, nil
				case err != nil:
					return nil, err
				}
				return []string{"marked email verified: " + normalized}, nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email to mark verified")
	return cmd
}

func newPurgeCodesCommand(opts *options) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "purge-codes",
		Short: "Delete used and expired verification codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, opts, "purge-codes", func(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
				if olderThan < 0 {
					return nil, errors.New("--older-than must not be negative")
				}
				ledger := service.NewCodeLedger(
					repository.NewVerificationCodeRepository(db),
					security.NewCodeGenerator(cfg.AuthEmailCodeTTL, cfg.AuthResetCodeTTL),
				)
				cutoff := time.Now().UTC().Add(-olderThan)
				n, err := ledger.PurgeExpired(ctx, cutoff)
				if err != nil {
					return nil, err
				}
				return []string{fmt.Sprintf("purged %d code(s) stale before %s", n, cutoff.Format(time.RFC3339))}, nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "only purge codes that went stale at least this long ago")
	return cmd
}

type action func(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error)

func execute(cmd *cobra.Command, opts *options, name string, fn action) error {
	runner := common.Runner{Tool: "seed", CI: opts.ci, Timeout: opts.timeout, UI: ui.Run}
	details, err := runner.Run(name, func(ctx context.Context) ([]string, error) {
		if err := common.LoadEnvFile(opts.envFile); err != nil {
			return nil, err
		}
		cfg, db, err := opts.open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = database.Close(db) }()
		return fn(ctx, cfg, db)
	})
	if opts.ci {
		common.WriteCIResult(cmd.OutOrStdout(), err == nil, "seed "+name, details, err)
	}
	return err
}

func loadConfigDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
