package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

func post(path string) error {
	resp, err := http.Post(daemonURL(path), "application/json", nil)
	if err != nil {
		return fmt.Errorf("daemon not running: %w", err)
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request rejected: %s", resp.Status)
	}

	return nil
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := post("/stop"); err != nil {
			return err
		}

		fmt.Println("stopped")
		return nil
	},
}

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Ask the running mirror to synchronize now",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := post("/sync"); err != nil {
			return err
		}

		fmt.Println("sync requested")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd, triggerCmd)
}
