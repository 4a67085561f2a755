package cmd

import (
	"fmt"
	"os"
	"replisync/internal/autostart"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Start mirroring the configured folders at login",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}

		if err := autostart.New().Install(autostart.LaunchFor(execPath, cfg)); err != nil {
			return err
		}

		fmt.Printf("replisync registered for autostart: %s -> %s\n", cfg.Source, cfg.Replica)
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the login service",
	RunE: func(cmd *cobra.Command, args []string) error {
		as := autostart.New()

		installed, err := as.IsInstalled()
		if err != nil {
			return err
		}
		if !installed {
			fmt.Println("replisync is not registered for autostart")
			return nil
		}

		if err := as.Uninstall(); err != nil {
			return err
		}

		fmt.Println("replisync autostart removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd, uninstallCmd)
}
