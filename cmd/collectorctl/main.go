package main

import (
	"fmt"
	"log/slog"
	"os"

	"agro-collector/confs"
	"agro-collector/db"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	sqlitePath string
	logger     *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "collectorctl",
	Short: "Operate the sensor reading collector",
	Long: `collectorctl runs the sensor reading collector outside of the HTTP service.

It can start the full service, perform a single collection and print the per-sensor
report, or keep collecting on an interval in an interactive terminal view.`,
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "Use a local SQLite database file instead of Postgres")

	rootCmd.AddCommand(serveCmd, runCmd, watchCmd)
}

// loadConfig reads .env and the environment and configures the logger. The
// --verbose flag overrides LOG_LEVEL.
func loadConfig() (*confs.Config, error) {
	cfg, err := confs.Load()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger = confs.NewLogger(os.Stderr, level, cfg.LogFormat)
	slog.SetDefault(logger)
	return cfg, nil
}

func openDatabase(cfg *confs.Config) (db.Database, error) {
	if sqlitePath != "" {
		logger.Info("using sqlite database", "path", sqlitePath)
		return db.OpenSQLite(sqlitePath)
	}
	return db.Connect(cfg.Database, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
