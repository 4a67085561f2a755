package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"replisync/internal/daemon"
	"replisync/internal/logger"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single synchronization pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		if err := cfg.Validate(); err != nil {
			return err
		}

		conn, err := openHistory()
		if err != nil {
			return err
		}

		m, err := daemon.NewMirror(cfg, afero.NewOsFs(), conn)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.ResetOnStart {
			if err := m.Reset(ctx); err != nil {
				return err
			}
		}

		if err := m.Pass(ctx); err != nil {
			return err
		}

		snap := m.Snapshot()
		fmt.Fprintf(os.Stdout, "done: %d folders created, %d files copied, %d files deleted, %d folders deleted, %d failed deletions\n",
			snap.FoldersCreated, snap.FilesCopied, snap.FilesDeleted, snap.FoldersDeleted, snap.DeleteFailures)
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("reset-on-start", false, "clear the replica before synchronizing")
	rootCmd.AddCommand(syncCmd)
}
