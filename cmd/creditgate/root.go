package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/creditgate/creditgate/adapters/clock"
	"github.com/creditgate/creditgate/adapters/sqlite"
	"github.com/creditgate/creditgate/config"
)

var (
	// Global flags
	cfgFile string
)

var cliClock = clock.Real{}

const checkMark = "✓"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "creditgate",
	Short: "Prepaid credit gateway with API key admission and usage metering",
	Long: `CreditGate is a self-hosted prepaid API gateway.

Every request outside the public allow-list must present an API key
and costs exactly one credit. Usage is metered asynchronously into an
auto-registering endpoint catalog.

Quick start:
  creditgate serve                     # Start the gateway
  creditgate accounts add --email=...  # Create a prepaid account

Management:
  creditgate accounts   # Manage prepaid accounts
  creditgate usage      # View usage statistics`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "creditgate.yaml", "config file path")
}

// openDatabase loads configuration and opens the migrated database for
// management commands.
func openDatabase() (*sqlite.DB, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
