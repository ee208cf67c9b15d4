// papertrade - a simulated stock trading session
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zappabad/papertrade/internal/config"
	"github.com/zappabad/papertrade/internal/ledger"
)

const serviceName = "papertrade"

var (
	version    = "0.1.0"
	configPath string
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "papertrade",
		Short: "Paper trading simulator",
		Long: `papertrade runs a simulated market with mock stocks, market orders,
stop-loss and take-profit exits, and an experience-based level system.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("papertrade version %s\n", version)
		},
	}
}

// openJournal connects the Postgres journal when a DSN is configured. The
// returned closer is safe to call when the journal is disabled.
func openJournal(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ledger.Writer, func(), error) {
	if cfg.Ledger.DSN == "" {
		return nil, func() {}, nil
	}

	store, err := ledger.NewPGStore(ctx, cfg.Ledger.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}

	wcfg := ledger.DefaultWriterConfig()
	wcfg.Buffer = cfg.Ledger.Buffer
	w := ledger.NewWriter(wcfg, store, logger)
	logger.Info("ledger journal enabled")

	return w, func() {
		w.Close()
		store.Close()
	}, nil
}
