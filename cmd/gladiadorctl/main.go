// Command gladiadorctl runs one-off maintenance tasks against the Gladiadores database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gladiadores/config"
	"gladiadores/internal/infra"
	"gladiadores/internal/repositories"
	"gladiadores/internal/services"
	"gladiadores/pkg/logger"
)

type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var timeout time.Duration

	root := &cobra.Command{
		Use:          "gladiadorctl",
		Short:        "Maintenance commands for the Gladiadores backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "abort the command after this long")

	withEnv := func(run func(ctx context.Context, e *env, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer infra.ClosePostgresql(e.db, e.log)
			defer func() { _ = e.log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return run(ctx, e, args)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(_ context.Context, e *env, _ []string) error {
				if err := infra.Migrate(e.db); err != nil {
					return err
				}
				e.log.Info("schema migrated")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert the 32 provinces and the default interests",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(ctx context.Context, e *env, _ []string) error {
				if err := provinceService(e, nil).Seed(ctx); err != nil {
					return fmt.Errorf("seed provinces: %w", err)
				}
				interests := services.NewInterestService(repositories.NewInterestRepository(e.db))
				if err := interests.Seed(ctx); err != nil {
					return fmt.Errorf("seed interests: %w", err)
				}
				e.log.Info("seed complete")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "grant-role <email> <role>",
			Short: "Grant a role (admin, moderator, user) to an existing account",
			Args:  cobra.ExactArgs(2),
			RunE: withEnv(func(ctx context.Context, e *env, args []string) error {
				roles := services.NewRoleService(
					repositories.NewRoleRepository(e.db),
					repositories.NewAccountRepository(e.db),
					e.log)
				if err := roles.AssignByEmail(ctx, args[0], args[1]); err != nil {
					return err
				}
				e.log.Info("role granted", zap.String("email", args[0]), zap.String("role", args[1]))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "reconcile",
			Short: "Recount province counters, unlock CIDP where reached and repair passports",
			Args:  cobra.NoArgs,
			RunE: withEnv(func(ctx context.Context, e *env, _ []string) error {
				var hub services.RealtimeHub
				if client, err := infra.InitRedis(e.cfg, e.log); err == nil {
					defer client.Close()
					hub = services.NewRedisHub(client, e.log)
				} else {
					e.log.Warn("redis unavailable, province events will not be published", zap.Error(err))
				}
				drifted, err := provinceService(e, hub).Reconcile(ctx)
				if err != nil {
					return err
				}
				regs := repositories.NewRegistrationRepository(e.db)
				passport := services.NewPassportService(
					regs,
					repositories.NewDonationRepository(e.db),
					services.NewGamificationRules(e.cfg.Gamification),
					hub,
					e.cfg.App.BaseURL,
					e.log)
				changed, err := passport.ReevaluateAll(ctx)
				if err != nil {
					return err
				}
				e.log.Info("reconcile complete", zap.Int("corrected", drifted), zap.Int("passports_changed", changed))
				return nil
			}),
		},
	)
	return root
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		return nil, err
	}
	db, err := infra.InitPostgresql(cfg, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func provinceService(e *env, hub services.RealtimeHub) services.ProvinceServiceInterface {
	return services.NewProvinceService(
		repositories.NewProvinceRepository(e.db),
		hub,
		services.NewGamificationRules(e.cfg.Gamification),
		e.log)
}
