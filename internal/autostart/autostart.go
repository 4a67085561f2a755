// Package autostart registers the mirror as a per-user service that starts
// at login.
package autostart

import (
	"fmt"
	"replisync/internal/config"
	"runtime"
	"strings"
)

const serviceName = "replisync"

// Launch is the command line the service manager runs.
type Launch struct {
	ExecPath string
	Args     []string
}

// LaunchFor builds the `run` invocation that reproduces cfg's pair and interval.
func LaunchFor(execPath string, cfg *config.Config) Launch {
	args := []string{
		"run",
		"--source", cfg.Source,
		"--replica", cfg.Replica,
		"--interval", fmt.Sprintf("%g", cfg.Interval),
		"--unit", cfg.Unit,
	}
	if cfg.LogFile != "" {
		args = append(args, "--log-file", cfg.LogFile)
	}

	return Launch{ExecPath: execPath, Args: args}
}

// CommandLine renders the launch as a single quoted command string.
func (l Launch) CommandLine() string {
	parts := make([]string, 0, len(l.Args)+1)
	parts = append(parts, quote(l.ExecPath))
	for _, a := range l.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"'") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

type AutoStarter interface {
	Install(l Launch) error
	Uninstall() error
	IsInstalled() (bool, error)
}

func New() AutoStarter {
	switch runtime.GOOS {
	case "windows":
		return &WindowsAutoStarter{}
	case "linux":
		return &LinuxAutoStarter{}
	default:
		return &UnsupportedAutoStarter{goos: runtime.GOOS}
	}
}

type UnsupportedAutoStarter struct {
	goos string
}

func (u *UnsupportedAutoStarter) Install(_ Launch) error {
	return fmt.Errorf("autostart is not supported on %s", u.goos)
}

func (u *UnsupportedAutoStarter) Uninstall() error {
	return fmt.Errorf("autostart is not supported on %s", u.goos)
}

func (u *UnsupportedAutoStarter) IsInstalled() (bool, error) {
	return false, nil
}
