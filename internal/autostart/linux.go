package autostart

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

const unitTemplate = `[Unit]
Description=replisync one-way folder mirror
After=local-fs.target

[Service]
ExecStart={{.CommandLine}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`

var unitTmpl = template.Must(template.New("unit").Parse(unitTemplate))

// RenderUnit returns the systemd user unit for l.
func RenderUnit(l Launch) ([]byte, error) {
	var buf bytes.Buffer
	if err := unitTmpl.Execute(&buf, l); err != nil {
		return nil, fmt.Errorf("failed to render service unit: %w", err)
	}
	return buf.Bytes(), nil
}

type LinuxAutoStarter struct{}

func (l *LinuxAutoStarter) unitPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", "systemd", "user", serviceName+".service"), nil
}

func (l *LinuxAutoStarter) Install(launch Launch) error {
	path, err := l.unitPath()
	if err != nil {
		return err
	}

	unit, err := RenderUnit(launch)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create unit directory: %w", err)
	}
	if err := os.WriteFile(path, unit, 0644); err != nil {
		return fmt.Errorf("failed to write service unit: %w", err)
	}

	return systemctl(true,
		[]string{"daemon-reload"},
		[]string{"enable", "--now", serviceName + ".service"},
	)
}

func (l *LinuxAutoStarter) Uninstall() error {
	// the unit may already be stopped
	_ = systemctl(false, []string{"disable", "--now", serviceName + ".service"})

	path, err := l.unitPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove service unit: %w", err)
	}

	return systemctl(true, []string{"daemon-reload"})
}

func (l *LinuxAutoStarter) IsInstalled() (bool, error) {
	path, err := l.unitPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func systemctl(strict bool, calls ...[]string) error {
	for _, args := range calls {
		full := append([]string{"--user"}, args...)
		out, err := exec.Command("systemctl", full...).CombinedOutput()
		if err != nil && strict {
			return fmt.Errorf("failed to run systemctl %v: %w\n%s", args, err, out)
		}
	}
	return nil
}
