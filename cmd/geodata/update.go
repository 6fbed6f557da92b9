package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/geoentities/internal/core"
	"github.com/JonMunkholm/geoentities/internal/metrics"
)

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update-geo-data",
		Short: "Download the geo CSV files and load them in one transaction",
		Long: `Downloads regions, subregions, countries, states and cities in that order
and inserts them inside a single transaction. Any failure rolls back every
stage. Rows whose id already exists are handled per IMPORT_CONFLICT_POLICY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) runImport(ctx context.Context, out io.Writer) error {
	backend, err := a.openStore(ctx, a.cfg.Database.AutoMigrate)
	if err != nil {
		return err
	}
	defer backend.Close()

	// Only import metrics go to the textfile; runtime metrics belong to the
	// exporter that reads it.
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	result, err := a.newImporter(backend, m).Run(ctx)

	if path := a.cfg.Import.MetricsFile; path != "" {
		if werr := m.WriteTextfile(path); werr != nil {
			a.logger.Warn("failed to write metrics file", "path", path, "error", werr)
		}
	}
	if err != nil {
		return err
	}

	printSummary(out, result)
	return nil
}

func printSummary(w io.Writer, r *core.ImportResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Entity\tRows\tWritten\tSkipped\tBytes\tDuration\t")
	for _, s := range r.Stages {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t\n",
			s.Stage.Label, s.Rows, s.Written, s.Skipped, s.Bytes, s.Duration.Round(time.Millisecond))
	}
	_ = tw.Flush()

	rows, written := r.Totals()
	fmt.Fprintf(w, "Imported %d rows (%d written, policy %s) in %s. Run %s.\n",
		rows, written, r.Policy, r.Duration.Round(time.Millisecond), r.RunID)
}
