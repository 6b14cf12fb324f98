package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/animus-labs/evergreen-matrix/internal/evergreen"
	"github.com/animus-labs/evergreen-matrix/internal/metrics"
	platformstore "github.com/animus-labs/evergreen-matrix/internal/platform/objectstore"
	"github.com/animus-labs/evergreen-matrix/internal/platform/postgres"
	"github.com/animus-labs/evergreen-matrix/internal/repo"
	repopg "github.com/animus-labs/evergreen-matrix/internal/repo/postgres"
	"github.com/animus-labs/evergreen-matrix/internal/storage/objectstore"
)

func newGenerateCommand(a *app) *cobra.Command {
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the task matrix to the output file",
		Long: `Generate every task family, check the result for consistency and write
the configuration document to output.path (or stdout with --stdout).

Optionally the document is published to object storage (publish.enabled),
recorded in Postgres (snapshot.enabled) and summarized as Prometheus
metrics (metrics.textfile).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGenerate(cmd, toStdout)
		},
	}
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "write the document to stdout instead of output.path")
	cmd.Flags().StringP("output", "o", "", "output file (default .evergreen/config.yml)")
	_ = a.v.BindPFlag("output.path", cmd.Flags().Lookup("output"))
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, toStdout bool) error {
	ctx := cmd.Context()
	runID := uuid.NewString()
	logger := a.logger.With("run_id", runID)

	r, err := a.render()
	if err != nil {
		return err
	}

	if toStdout {
		if _, err := cmd.OutOrStdout().Write(r.data); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
	} else {
		if err := evergreen.WriteFile(a.cfg.Output.Path, r.data); err != nil {
			return err
		}
		logger.Info("document written", "path", a.cfg.Output.Path, "bytes", len(r.data), "digest", r.digest)
	}

	if a.cfg.Publish.Enabled {
		if err := publish(ctx, logger, a.cfg.Publish.Key, r.data); err != nil {
			return err
		}
	}
	if a.cfg.Snapshot.Enabled {
		if err := snapshot(ctx, logger, runID, r); err != nil {
			return err
		}
	}
	if path := a.cfg.Metrics.Textfile; path != "" {
		rec := metrics.NewRecorder()
		rec.ObserveStats(r.matrix.Stats...)
		rec.ObserveDocument(len(r.data))
		if err := rec.WriteTextfile(path); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.Debug("metrics written", "path", path)
	}
	return nil
}

func publish(ctx context.Context, logger *slog.Logger, key string, data []byte) error {
	storeCfg, err := platformstore.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("object store config: %w", err)
	}
	store, err := objectstore.NewMinioStore(storeCfg)
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}
	if err := platformstore.EnsureBucket(ctx, store.Client(), storeCfg); err != nil {
		return err
	}
	info, err := evergreen.Publisher{Store: store, Bucket: storeCfg.Bucket, Key: key}.Publish(ctx, data)
	if err != nil {
		return err
	}
	logger.Info("document published", "bucket", storeCfg.Bucket, "key", info.Key, "etag", info.ETag)
	return nil
}

func snapshot(ctx context.Context, logger *slog.Logger, runID string, r rendered) error {
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
	record, created, err := store.UpsertSnapshot(ctx, repo.SnapshotRecord{
		ID:               runID,
		Digest:           r.digest,
		Document:         r.data,
		CompileTasks:     len(r.matrix.Compile),
		IntegrationTasks: len(r.matrix.Integration),
		AuthTasks:        len(r.matrix.Auth),
	})
	if err != nil {
		return err
	}
	logger.Info("snapshot recorded", "snapshot_id", record.ID, "digest", record.Digest, "created", created)
	return nil
}
