package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/geoentities/internal/core"
	"github.com/JonMunkholm/geoentities/internal/logging"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.openStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer backend.Close()
			a.logger.Info("schema is up to date")
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Delete one row and everything that references it",
		Example: `  geodata delete country 17
  geodata delete region 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := core.ParseEntity(args[0])
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: must be an integer", args[1])
			}

			backend, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer backend.Close()

			if err := backend.Delete(cmd.Context(), entity, id); err != nil {
				return err
			}
			logging.WithFields(cmd.Context(), "entity", entity, "id", id).Info("deleted row and its dependants")
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d and everything that referenced it.\n", entity, id)
			return nil
		},
	}
}

func newCountsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Print the number of rows per entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer backend.Close()

			counts, err := backend.Counts(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, e := range core.Entities {
				fmt.Fprintf(tw, "%s\t%d\n", e, counts.Of(e))
			}
			return tw.Flush()
		},
	}
}
