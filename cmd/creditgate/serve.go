package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/creditgate/creditgate/bootstrap"
	"github.com/creditgate/creditgate/config"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway server",
	Long: `Start the CreditGate server.

The server will:
  - Load configuration from creditgate.yaml (or --config)
  - Or load configuration from CREDITGATE_* environment variables
  - Connect to the database and apply migrations
  - Gate every non-public request behind an API key and a one-credit charge
  - Record usage asynchronously into the endpoint catalog

Environment variables (for Docker deployments):
  CREDITGATE_DATABASE_DSN   - Database path (default: creditgate.db)
  CREDITGATE_SERVER_PORT    - Server port (default: 8080)
  CREDITGATE_LOG_LEVEL      - Log level: debug, info, warn, error

Examples:
  creditgate serve
  creditgate serve --config /etc/creditgate/config.yaml
  creditgate serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	var app *bootstrap.App
	var err error

	if hasConfigFile && hotReload {
		// Hot reload only works with a config file
		app, err = bootstrap.NewWithHotReload(cfgFile)
	} else {
		cfg, loadErr := config.LoadWithFallback(cfgFile)
		if loadErr != nil {
			return fmt.Errorf("error loading config: %w", loadErr)
		}

		if !hasConfigFile {
			fmt.Println("Running with environment variables (no config file)")
		}

		app, err = bootstrap.New(cfg)
	}

	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
