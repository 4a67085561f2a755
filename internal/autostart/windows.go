package autostart

import (
	"fmt"
	"os/exec"
)

const taskName = "ReplisyncMirror"

type WindowsAutoStarter struct{}

func (w *WindowsAutoStarter) Install(l Launch) error {
	cmd := exec.Command("schtasks", "/create",
		"/TN", taskName,
		"/TR", l.CommandLine(),
		"/SC", "ONLOGON",
		"/F")

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to register task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) Uninstall() error {
	out, err := exec.Command("schtasks", "/delete", "/TN", taskName, "/F").CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to remove task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) IsInstalled() (bool, error) {
	if err := exec.Command("schtasks", "/query", "/TN", taskName).Run(); err != nil {
		return false, nil
	}

	return true, nil
}
