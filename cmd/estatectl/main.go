package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourorg/estate-api/internal/app"
	"github.com/yourorg/estate-api/internal/config"
	"github.com/yourorg/estate-api/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "estatectl",
	Short:         "Maintenance commands for estate-api",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(migrateCmd, seedCmd, importCmd, exportCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "estatectl: %v\n", err)
		os.Exit(1)
	}
}

// withApp loads config, installs the logger and hands fn a connected App.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	a, err := app.New(ctx, *cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func requireStore(a *app.App) error {
	if a.Store == nil {
		return fmt.Errorf("PG_DSN is not set")
	}
	return nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireStore(a); err != nil {
				return err
			}
			if err := a.Store.Migrate(ctx); err != nil {
				return err
			}
			zap.L().Info("migrations applied")
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the embedded catalog listings to the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireStore(a); err != nil {
				return err
			}
			if err := a.Store.Migrate(ctx); err != nil {
				return err
			}
			a.InvalidateOnWrite()
			n, err := a.Seed(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d properties\n", n)
			return nil
		})
	},
}
