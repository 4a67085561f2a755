package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	ErrSamePaths     = errors.New("source and replica must be different directories")
	ErrNestedPaths   = errors.New("source and replica must not be nested")
	ErrInterval      = errors.New("interval must be positive")
	ErrIntervalRange = errors.New("interval out of range")
)

type Config struct {
	Source       string   `mapstructure:"source"`
	Replica      string   `mapstructure:"replica"`
	Interval     float64  `mapstructure:"interval"`
	Unit         string   `mapstructure:"unit"`
	LogFile      string   `mapstructure:"log_file"`
	Debug        bool     `mapstructure:"debug"`
	DBPath       string   `mapstructure:"db_path"`
	DaemonPort   int      `mapstructure:"daemon_port"`
	APIEnabled   bool     `mapstructure:"api_enabled"`
	WatchSource  bool     `mapstructure:"watch_source"`
	IgnoreList   []string `mapstructure:"ignore_list"`
	DebounceMS   int      `mapstructure:"debounce_ms"`
	ResetOnStart bool     `mapstructure:"reset_on_start"`
	RunOnStart   bool     `mapstructure:"run_on_start"`
}

var Default = Config{
	Interval:   60,
	Unit:       "seconds",
	DBPath:     "replisync.db",
	DaemonPort: 9101,
	APIEnabled: true,
	IgnoreList: []string{".git", ".DS_Store", "*.tmp", "*.swp"},
	DebounceMS: 500,
	RunOnStart: true,
}

var units = map[string]time.Duration{
	"seconds": time.Second,
	"minutes": time.Minute,
	"hours":   time.Hour,
}

// Load reads ~/.replisync/config.yaml, REPLISYNC_* environment variables and
// any flags in flags that carry a config key name.
func Load(flags *pflag.FlagSet) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}

	configDir := filepath.Join(home, ".replisync")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetDefault("source", Default.Source)
	v.SetDefault("replica", Default.Replica)
	v.SetDefault("interval", Default.Interval)
	v.SetDefault("unit", Default.Unit)
	v.SetDefault("log_file", Default.LogFile)
	v.SetDefault("debug", Default.Debug)
	v.SetDefault("db_path", filepath.Join(configDir, Default.DBPath))
	v.SetDefault("daemon_port", Default.DaemonPort)
	v.SetDefault("api_enabled", Default.APIEnabled)
	v.SetDefault("watch_source", Default.WatchSource)
	v.SetDefault("ignore_list", Default.IgnoreList)
	v.SetDefault("debounce_ms", Default.DebounceMS)
	v.SetDefault("reset_on_start", Default.ResetOnStart)
	v.SetDefault("run_on_start", Default.RunOnStart)

	v.SetEnvPrefix("REPLISYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !isKnownKey(key) {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func isKnownKey(key string) bool {
	switch key {
	case "source", "replica", "interval", "unit", "log_file", "debug", "db_path",
		"daemon_port", "api_enabled", "watch_source", "ignore_list", "debounce_ms",
		"reset_on_start", "run_on_start":
		return true
	}
	return false
}

// IntervalDuration converts Interval and Unit into a duration.
func (c *Config) IntervalDuration() (time.Duration, error) {
	unit, ok := units[strings.ToLower(strings.TrimSpace(c.Unit))]
	if !ok {
		return 0, fmt.Errorf("invalid unit %q: expected seconds, minutes or hours", c.Unit)
	}

	if c.Interval <= 0 {
		return 0, ErrInterval
	}

	ns := c.Interval * float64(unit)
	if !(ns >= 1 && ns < math.MaxInt64) {
		return 0, fmt.Errorf("%w: %g %s", ErrIntervalRange, c.Interval, c.Unit)
	}

	return time.Duration(ns), nil
}

// Validate resolves Source and Replica to absolute paths and checks that the
// pair can be mirrored.
func (c *Config) Validate() error {
	if c.Source == "" || c.Replica == "" {
		return fmt.Errorf("source and replica are required")
	}

	src, err := existingDir(c.Source)
	if err != nil {
		return fmt.Errorf("invalid source: %w", err)
	}

	dst, err := existingDir(c.Replica)
	if err != nil {
		return fmt.Errorf("invalid replica: %w", err)
	}

	if src == dst {
		return ErrSamePaths
	}

	if within(src, dst) || within(dst, src) {
		return ErrNestedPaths
	}

	if _, err := c.IntervalDuration(); err != nil {
		return err
	}

	c.Source, c.Replica = src, dst
	return nil
}

func existingDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}

	return abs, nil
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
