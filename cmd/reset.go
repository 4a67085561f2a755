package cmd

import (
	"fmt"
	"replisync/internal/daemon"
	"replisync/internal/logger"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove everything inside the replica folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		if err := cfg.Validate(); err != nil {
			return err
		}

		m, err := daemon.NewMirror(cfg, afero.NewOsFs(), nil)
		if err != nil {
			return err
		}

		if err := m.Reset(cmd.Context()); err != nil {
			return err
		}

		snap := m.Snapshot()
		fmt.Printf("replica reset: %d files and %d folders removed\n", snap.FilesDeleted, snap.FoldersDeleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
