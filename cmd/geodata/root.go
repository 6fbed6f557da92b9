package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/geoentities/internal/config"
	"github.com/JonMunkholm/geoentities/internal/core"
	"github.com/JonMunkholm/geoentities/internal/logging"
	"github.com/JonMunkholm/geoentities/internal/metrics"
	"github.com/JonMunkholm/geoentities/internal/source"
	"github.com/JonMunkholm/geoentities/internal/store"
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "geodata",
		Short:         "Import and browse regions, countries, states and cities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			a.cfg = cfg
			a.logger = logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			a.logger.Debug("configuration loaded", "config", cfg.String())
			return nil
		},
	}

	root.AddCommand(
		newUpdateCmd(a),
		newServeCmd(a),
		newMigrateCmd(a),
		newDeleteCmd(a),
		newCountsCmd(a),
	)
	return root
}

// openStore connects to the configured backend, applying the schema first
// when migrate is set.
func (a *app) openStore(ctx context.Context, migrate bool) (store.Backend, error) {
	backend, err := store.Open(ctx, a.cfg.Database, a.cfg.Import.BatchSize)
	if err != nil {
		return nil, err
	}
	if err := backend.Ping(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	a.logger.Info("connected to database", "backend", a.cfg.Database.Backend())

	if migrate {
		if err := backend.Migrate(ctx); err != nil {
			_ = backend.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return backend, nil
}

func (a *app) newImporter(s core.Store, m *metrics.Metrics) *core.Importer {
	return core.NewImporter(source.New(a.cfg.Source), s,
		core.WithConflictPolicy(a.cfg.Import.Policy()),
		core.WithObserver(core.MultiObserver{core.NewLogObserver(a.logger), m}),
	)
}
