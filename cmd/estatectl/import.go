package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/yourorg/estate-api/internal/app"
)

var importOnce bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import partner listing feeds",
	Long: `Pulls every feed in IMPORT_FEEDS page by page and upserts the listings.
Without --once the import repeats every IMPORT_INTERVAL until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireStore(a); err != nil {
				return err
			}
			if err := a.Store.Migrate(ctx); err != nil {
				return err
			}
			a.InvalidateOnWrite()
			job, err := a.Importer()
			if err != nil {
				return err
			}
			if importOnce {
				err = job.RunOnce(ctx)
			} else {
				err = job.Run(ctx)
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	},
}

func init() {
	importCmd.Flags().BoolVar(&importOnce, "once", false, "run a single pass and exit")
}
