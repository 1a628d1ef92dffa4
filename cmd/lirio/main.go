// Command lirio runs the Lírio farm ledger: the REST API, the WhatsApp
// command bot and the scheduled reports, plus maintenance subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "lirio",
	Short: "Farm ledger for pens, feed stock and production records",
	Long: `lirio keeps the records of a small farm: animal pens, feed stock,
animal movements, egg collections and vegetable harvests.

Without a subcommand it runs the HTTP server (same as "lirio serve").`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file (default .env when present)")

	exportCmd.Flags().StringVar(&exportStart, "start", "", "first day, YYYY-MM-DD (default 30 days before end)")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "last day, YYYY-MM-DD (default today)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default lirio_<start>_<end>.xlsx)")

	rootCmd.AddCommand(serveCmd, initCmd, backupCmd, restoreCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
