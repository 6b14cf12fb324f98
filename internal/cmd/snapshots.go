package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/animus-labs/evergreen-matrix/internal/platform/postgres"
	"github.com/animus-labs/evergreen-matrix/internal/repo"
	repopg "github.com/animus-labs/evergreen-matrix/internal/repo/postgres"
)

func newSnapshotsCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List recorded matrix snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			dbCfg, err := postgres.ConfigFromEnv()
			if err != nil {
				return fmt.Errorf("database config: %w", err)
			}
			db, err := postgres.Open(ctx, dbCfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			store := repopg.NewSnapshotStore(db)
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}
			records, err := store.ListSnapshots(ctx, repo.SnapshotFilter{Limit: limit})
			if err != nil {
				return err
			}
			a.logger.Debug("snapshots listed", "count", len(records))

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tDIGEST\tCOMPILE\tINTEGRATION\tAUTH")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", r.CreatedAt.UTC().Format(time.RFC3339), shortDigest(r.Digest), r.CompileTasks, r.IntegrationTasks, r.AuthTasks)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of snapshots (max 200)")
	return cmd
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
