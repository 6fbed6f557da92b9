package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/geoentities/internal/metrics"
	"github.com/JonMunkholm/geoentities/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var importOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only admin listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), importOnStart)
		},
	}
	cmd.Flags().BoolVar(&importOnStart, "import", false, "Import in the background while serving, repeating every IMPORT_INTERVAL when set")
	return cmd
}

func (a *app) serve(ctx context.Context, importOnStart bool) error {
	backend, err := a.openStore(ctx, a.cfg.Database.AutoMigrate)
	if err != nil {
		return err
	}
	defer backend.Close()

	m := metrics.New()
	srv := web.NewServer(backend, web.Options{
		PageSize:       a.cfg.Admin.PageSize,
		RequestTimeout: a.cfg.Server.RequestTimeout,
		TrustedProxies: a.cfg.Server.TrustedProxies,
		APIKeys:        a.cfg.Admin.APIKeys,
		Metrics:        m.Handler(),
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(a.cfg.Server)
	}()

	importCtx, stopImport := context.WithCancel(ctx)
	defer stopImport()

	var wg sync.WaitGroup
	if importOnStart {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.newImporter(backend, m).Schedule(importCtx, a.cfg.Import.Interval)
		}()
	}

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			stopImport()
			wg.Wait()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	stopImport()
	wg.Wait()
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}
