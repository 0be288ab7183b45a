package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/walis/inventory-uploader/internal/config"
	"github.com/walis/inventory-uploader/internal/core"
	_ "github.com/walis/inventory-uploader/internal/core/tables" // Register inventory and orders
	"github.com/walis/inventory-uploader/internal/logging"
	"github.com/walis/inventory-uploader/internal/warehouse/connect"
)

var ingestMapping string

var ingestCmd = &cobra.Command{
	Use:   "ingest <inventory|orders> <file.csv>",
	Short: "Append a CSV file to the inventory or orders table",
	Long: `Ingest a CSV file into the warehouse.

Columns are matched automatically by name. When some required fields cannot
be matched, the command prints the mapping diagnostic and exits with status 2;
rerun with --mapping to map columns explicitly.

Examples:
  stockctl ingest inventory stock.csv
  stockctl ingest orders orders.csv --mapping '{"Ref":"order_id","Item":"sku_id","Units":"quantity","Placed":"order_date","Buyer":"customer_id"}'`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{core.KeyInventory, core.KeyOrders},
	RunE:      runIngest,
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Recompute the stockout report",
	Args:  cobra.NoArgs,
	RunE:  runCalculate,
}

var stockoutsCmd = &cobra.Command{
	Use:   "stockouts",
	Short: "Print the stored stockout report",
	Args:  cobra.NoArgs,
	RunE:  runStockouts,
}

// errMappingRequired signals exit status 2 after the diagnostic is printed.
var errMappingRequired = errors.New("column mapping required")

func init() {
	ingestCmd.Flags().StringVar(&ingestMapping, "mapping", "", "Explicit column mapping as a JSON object of source column to field")

	rootCmd.AddCommand(ingestCmd, calculateCmd, stockoutsCmd)
}

// withService loads configuration, opens the warehouse and runs fn with a
// context cancelled on SIGINT/SIGTERM.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *core.Service) error) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, cfg.Logging.Format))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wh, closeWarehouse, err := connect.Open(ctx, cfg.Warehouse)
	if err != nil {
		return err
	}
	defer closeWarehouse()

	svc := core.NewService(wh, core.Options{
		MaxConcurrentIngests: cfg.Upload.MaxConcurrent,
		MaxWait:              cfg.Upload.MaxWaitTime,
	})
	return fn(ctx, svc)
}

func runIngest(cmd *cobra.Command, args []string) error {
	kind, path := args[0], args[1]
	if _, ok := core.Get(kind); !ok {
		return fmt.Errorf("unknown dataset %q: use %s or %s", kind, core.KeyInventory, core.KeyOrders)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	err = withService(cmd, func(ctx context.Context, svc *core.Service) error {
		out, err := svc.Ingest(ctx, kind, data, filepath.Base(path), ingestMapping)
		if err != nil {
			return userError(err)
		}
		if err := printJSON(cmd.OutOrStdout(), out.Body()); err != nil {
			return err
		}
		if out.NeedsMapping() {
			return errMappingRequired
		}
		return nil
	})
	if errors.Is(err, errMappingRequired) {
		fmt.Fprintln(cmd.ErrOrStderr(), "column mapping required: rerun with --mapping")
		os.Exit(2)
	}
	return err
}

func runCalculate(cmd *cobra.Command, args []string) error {
	return withService(cmd, func(ctx context.Context, svc *core.Service) error {
		res, err := svc.CalculateStockouts(ctx)
		if err != nil {
			return userError(err)
		}
		return printJSON(cmd.OutOrStdout(), res)
	})
}

func runStockouts(cmd *cobra.Command, args []string) error {
	return withService(cmd, func(ctx context.Context, svc *core.Service) error {
		res, err := svc.GetStockouts(ctx)
		if err != nil {
			return userError(err)
		}
		return printJSON(cmd.OutOrStdout(), res)
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// userError puts the coded user message and suggested action in front of
// err. Errors without a specific code pass through unchanged.
func userError(err error) error {
	if !core.IsUserFacing(err) {
		return err
	}
	return fmt.Errorf("%s\ncause: %w", core.FormatUserError(err), err)
}
