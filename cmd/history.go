package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"replisync/internal/model"

	"github.com/spf13/cobra"
)

var (
	historyN   int
	historyAll bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent replica changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := fmt.Sprintf("%s?n=%d&all=%t", daemonURL("/history"), historyN, historyAll)
		resp, err := http.Get(url)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("history unavailable: %s", resp.Status)
		}

		var histories []model.History
		if err := json.NewDecoder(resp.Body).Decode(&histories); err != nil {
			return err
		}

		if len(histories) == 0 {
			fmt.Println("no history yet")
			return nil
		}

		for _, h := range histories {
			fmt.Printf("[%s] #%-5d %-16s %s\n",
				h.At.Format("2006-01-02 15:04:05"),
				h.RunID,
				h.Action,
				h.RelPath,
			)
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of history entries to show")
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "include run start and end entries")
	rootCmd.AddCommand(historyCmd)
}
