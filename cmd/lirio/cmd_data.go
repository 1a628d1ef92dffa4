package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportStart string
	exportEnd   string
	exportOut   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed an empty store and reconcile the feed inventory",
	Long: `Writes the initial pens, feed types and users when the store has never
been initialized, then normalizes legacy feed records and adds missing
feed types for every pen type. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		res, err := a.initialize(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if res.Seeded {
			fmt.Fprintln(out, "store seeded")
		} else {
			fmt.Fprintln(out, "store already initialized")
		}
		m := res.Migration
		fmt.Fprintf(out, "feed records: %d normalized, %d dropped, %d duplicates removed\n", m.Normalized, m.Dropped, m.Duplicates)
		for _, t := range m.Backfilled {
			fmt.Fprintf(out, "feed type added: %s\n", t)
		}
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload a snapshot of every bucket to S3",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		svc, err := a.backup(cmd.Context())
		if err != nil {
			return err
		}
		key, err := svc.Backup(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore [key]",
	Short: "Overwrite the store with an S3 snapshot (latest when no key is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		svc, err := a.backup(ctx)
		if err != nil {
			return err
		}

		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			latest, ok, err := svc.Latest(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no snapshots in bucket %s", a.cfg.Backup.Bucket)
			}
			key = latest
		}

		if err := svc.Restore(ctx, key); err != nil {
			return err
		}
		if _, err := a.repos.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", key)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the statistics workbook (xlsx) for a date range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		start, end, err := a.reporting.ResolveRange(exportStart, exportEnd)
		if err != nil {
			return err
		}
		path := exportOut
		if path == "" {
			path = fmt.Sprintf("lirio_%s_%s.xlsx", start, end)
		}

		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := a.reporting.ExportWorkbook(ctx, f, start, end); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}
