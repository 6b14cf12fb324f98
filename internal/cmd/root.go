package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/animus-labs/evergreen-matrix/internal/catalog"
	"github.com/animus-labs/evergreen-matrix/internal/config"
	"github.com/animus-labs/evergreen-matrix/internal/domain"
	"github.com/animus-labs/evergreen-matrix/internal/evergreen"
	"github.com/animus-labs/evergreen-matrix/internal/execution/matrix"
	"github.com/animus-labs/evergreen-matrix/internal/execution/validator"
)

// app holds what every subcommand needs once flags and config are resolved.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        config.Config
	logger     *slog.Logger
}

// NewRootCommand builds the matrixgen command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "matrixgen",
		Short: "Generate the CI task matrix",
		Long: `matrixgen enumerates the build and test configurations of the driver,
drops illegal combinations, and renders the surviving tasks as an
Evergreen configuration document.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = a.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newGenerateCommand(a),
		newListCommand(a),
		newCheckCommand(a),
		newExplainCommand(a),
		newSnapshotsCommand(a),
	)
	return root
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(cfg.Log.Format), "json") {
		handler = slog.NewJSONHandler(stderr, opts)
	} else {
		handler = slog.NewTextHandler(stderr, opts)
	}
	a.cfg = cfg
	a.logger = slog.New(handler)
	return nil
}

func (a *app) generator() (*matrix.Generator, catalog.Catalog, error) {
	integration, err := domain.IntegrationAxisSpace(a.cfg.ServerVersions())
	if err != nil {
		return nil, catalog.Catalog{}, fmt.Errorf("integration axes: %w", err)
	}
	auth, err := domain.AuthAxisSpace()
	if err != nil {
		return nil, catalog.Catalog{}, fmt.Errorf("auth axes: %w", err)
	}
	cat, err := catalog.Default()
	if err != nil {
		return nil, catalog.Catalog{}, fmt.Errorf("compile catalog: %w", err)
	}
	g, err := matrix.New(matrix.Config{
		IntegrationAxes: integration,
		AuthAxes:        auth,
		Catalog:         cat,
		Logger:          a.logger,
	})
	if err != nil {
		return nil, catalog.Catalog{}, err
	}
	return g, cat, nil
}

type rendered struct {
	matrix matrix.Matrix
	data   []byte
	digest string
}

// render generates, validates and serializes the full matrix.
func (a *app) render() (rendered, error) {
	g, cat, err := a.generator()
	if err != nil {
		return rendered{}, err
	}
	m, err := g.GenerateAll()
	if err != nil {
		return rendered{}, err
	}
	tasks := m.Tasks()
	if err := validator.ValidateTasks(tasks, cat); err != nil {
		return rendered{}, err
	}
	doc, err := evergreen.NewDocument(tasks)
	if err != nil {
		return rendered{}, err
	}
	data, err := evergreen.Render(doc)
	if err != nil {
		return rendered{}, err
	}
	return rendered{matrix: m, data: data, digest: evergreen.Digest(data)}, nil
}
