// stockctl runs the uploader operations against the configured warehouse
// without the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	envFile  string
	logLevel string
	compact  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stockctl",
	Short: "Ingest inventory and orders CSVs and compute stockouts",
	Long: `stockctl loads inventory and orders CSV files into the warehouse and
computes the stockout report, using the same configuration as the server
(WAREHOUSE_DRIVER, WAREHOUSE_URL, ...).

Results are printed as JSON on stdout; logs go to stderr.`,
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load if present")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&compact, "compact", false, "Print JSON on a single line")
}
