package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"replisync/internal/model"
	"replisync/internal/repository"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View mirror status",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/status"))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var result struct {
			Mirror model.MirrorSnapshot `json:"mirror"`
			Runs   *repository.Stats    `json:"runs"`
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("failed to decode status response: %w", err)
		}

		snap := result.Mirror
		lastPass := "-"
		if snap.Scheduler.LastPass != nil {
			lastPass = snap.Scheduler.LastPass.Format("2006-01-02 15:04:05")
		}

		fmt.Printf("%-10s %-30s %-30s %-10s %s\n", "STATE", "SOURCE", "REPLICA", "INTERVAL", "LAST PASS")
		fmt.Printf("%-10s %-30s %-30s %-10s %s\n",
			snap.Scheduler.State, snap.Source, snap.Replica, snap.Scheduler.Interval, lastPass)
		fmt.Printf("       passes: %d, failed: %d, skipped: %d\n",
			snap.Scheduler.Passes, snap.Scheduler.Failed, snap.Scheduler.Skipped)
		fmt.Printf("       created: %d, copied: %d, deleted files: %d, deleted folders: %d, failed deletions: %d\n",
			snap.FoldersCreated, snap.FilesCopied, snap.FilesDeleted, snap.FoldersDeleted, snap.DeleteFailures)
		fmt.Printf("       uptime: %s\n", time.Since(snap.StartedAt).Round(time.Second))

		if snap.LastError != "" {
			fmt.Printf("       last error: %s\n", snap.LastError)
		}

		if result.Runs != nil {
			fmt.Printf("       recorded runs: %d (%d ok, %d failed)\n",
				result.Runs.Total, result.Runs.Success, result.Runs.Failed)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
