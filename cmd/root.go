package cmd

import (
	"fmt"
	"os"
	"replisync/internal/config"
	"replisync/internal/db"
	"replisync/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "replisync",
	Short:        "Keep a replica folder in sync with a source folder",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load(cmd.Flags())
		if err != nil {
			return err
		}

		return logger.Init(cfg.Debug, cfg.LogFile)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func daemonURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", cfg.DaemonPort, path)
}

// openHistory opens the history database, or returns nil when it is disabled.
func openHistory() (*gorm.DB, error) {
	if cfg.DBPath == "" {
		return nil, nil
	}

	return db.Open(cfg.DBPath)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("source", "", "source folder to mirror from")
	flags.String("replica", "", "replica folder to mirror onto")
	flags.Float64("interval", config.Default.Interval, "time between synchronizations")
	flags.String("unit", config.Default.Unit, "interval unit: seconds, minutes or hours")
	flags.String("log-file", "", "append log entries to this file")
	flags.String("db-path", "", "history database path; empty disables history")
	flags.Int("daemon-port", config.Default.DaemonPort, "status API port")
	flags.Bool("debug", false, "Enable debug mode")
}
