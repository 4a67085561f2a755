package autostart

import (
	"replisync/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchFor(t *testing.T) {
	cfg := &config.Config{
		Source:   "/data/src",
		Replica:  "/backup/my replica",
		Interval: 1.5,
		Unit:     "minutes",
	}

	l := LaunchFor("/usr/bin/replisync", cfg)
	assert.Equal(t, []string{
		"run",
		"--source", "/data/src",
		"--replica", "/backup/my replica",
		"--interval", "1.5",
		"--unit", "minutes",
	}, l.Args)
	assert.Equal(t,
		`/usr/bin/replisync run --source /data/src --replica "/backup/my replica" --interval 1.5 --unit minutes`,
		l.CommandLine())
}

func TestLaunchForLogFile(t *testing.T) {
	cfg := &config.Config{Source: "/a", Replica: "/b", Interval: 10, Unit: "seconds", LogFile: "/var/log/r.log"}

	l := LaunchFor("replisync", cfg)
	assert.Equal(t, []string{"--log-file", "/var/log/r.log"}, l.Args[len(l.Args)-2:])
}

func TestRenderUnit(t *testing.T) {
	unit, err := RenderUnit(Launch{ExecPath: "/opt/replisync", Args: []string{"run", "--source", "/s"}})
	require.NoError(t, err)

	assert.Contains(t, string(unit), "[Service]\nExecStart=/opt/replisync run --source /s\n")
	assert.Contains(t, string(unit), "WantedBy=default.target")
}

func TestUnsupported(t *testing.T) {
	u := &UnsupportedAutoStarter{goos: "plan9"}

	assert.EqualError(t, u.Install(Launch{}), "autostart is not supported on plan9")
	installed, err := u.IsInstalled()
	assert.NoError(t, err)
	assert.False(t, installed)
}
