package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/mailcraft/bootstrap"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the builder API server",
	Long: `Start the mailcraft HTTP server.

The server will:
  - Load configuration from mailcraft.yaml (or --config)
  - Or load configuration from MAILCRAFT_* environment variables
  - Open the export archive (sqlite or memory)
  - Serve the document API under /api/v1

Environment variables (for Docker deployments):
  MAILCRAFT_SERVER_PORT         - Server port (default: 8080)
  MAILCRAFT_DATABASE_DRIVER     - sqlite or memory (default: sqlite)
  MAILCRAFT_DATABASE_DSN        - Database path (default: mailcraft.db)
  MAILCRAFT_EXPORT_ELSE_POLICY  - omit or primary (default: omit)
  MAILCRAFT_LOG_LEVEL           - Log level: debug, info, warn, error

Examples:
  mailcraft serve
  mailcraft serve --config /etc/mailcraft/config.yaml
  mailcraft serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "reload export and logging settings when the config file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "No config file at %s, using environment and defaults\n", cfgFile)
	}

	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: cfgFile,
		Version:    version,
		Watch:      hotReload,
	})
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	return app.Run()
}
