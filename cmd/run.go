package cmd

import (
	"context"
	"os"
	"os/signal"
	"replisync/internal/config"
	"replisync/internal/daemon"
	"replisync/internal/logger"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Mirror the source onto the replica every interval until interrupted",
	RunE:  runMirror,
}

func runMirror(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.Start(ctx)
	}()

	var (
		srv    *daemon.Server
		stopCh <-chan struct{}
	)
	if cfg.APIEnabled {
		srv = daemon.NewServer(m, conn, cfg.DaemonPort)
		srv.Start()
		stopCh = srv.StopCh()
	}

	sigCh := notifyOnce(ctx, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log.Info("shutting down",
			zap.String("signal", sig.String()))
	case <-stopCh:
		logger.Log.Info("stop requested via API")
	case err := <-errCh:
		return err
	}

	cancel()
	err = <-errCh

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if serr := srv.Stop(shutdownCtx); serr != nil {
			logger.Log.Warn("failed to stop status server", zap.Error(serr))
		}
	}

	logger.Log.Info("program interrupted, exiting gracefully")
	return err
}

// notifyOnce relays the first of sigs and then restores default handling,
// so a second signal terminates the process while shutdown is in progress.
// The channel closes after that signal or once ctx is done.
func notifyOnce(ctx context.Context, sigs ...os.Signal) <-chan os.Signal {
	in := make(chan os.Signal, 1)
	out := make(chan os.Signal, 1)
	signal.Notify(in, sigs...)

	go func() {
		defer close(out)

		select {
		case sig := <-in:
			signal.Stop(in)
			out <- sig
		case <-ctx.Done():
			signal.Stop(in)
		}
	}()

	return out
}

func init() {
	flags := runCmd.Flags()
	flags.Bool("watch-source", config.Default.WatchSource, "also sync early when the source changes")
	flags.StringSlice("ignore-list", config.Default.IgnoreList, "changes to ignore when watching the source")
	flags.Int("debounce-ms", config.Default.DebounceMS, "quiet period before a watched change triggers a sync")
	flags.Bool("reset-on-start", config.Default.ResetOnStart, "clear the replica before the first synchronization")
	flags.Bool("run-on-start", config.Default.RunOnStart, "synchronize immediately instead of after one interval")
	flags.Bool("api-enabled", config.Default.APIEnabled, "serve the status API")
	rootCmd.AddCommand(runCmd)
}
