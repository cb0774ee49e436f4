package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the optional taskmap configuration file.
type Config struct {
	Daemon   DaemonConfig   `toml:"daemon"`
	Defaults DefaultsConfig `toml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DaemonConfig holds settings for `taskmap daemon`. Unset fields fall back to
// flag defaults.
type DaemonConfig struct {
	Socket            *string  `toml:"socket"`
	Listen            *string  `toml:"listen"`
	TLSCert           *string  `toml:"tls_cert"`
	TLSKey            *string  `toml:"tls_key"`
	Compress          *bool    `toml:"compress"`
	MetricsAddr       *string  `toml:"metrics_addr"`
	MaxTasks          *int     `toml:"max_tasks"`
	MaxFetchWait      *string  `toml:"max_fetch_wait"`
	RequestsPerSecond *float64 `toml:"requests_per_second"`
	Watch             []string `toml:"watch"`
}

// DefaultsConfig holds engine defaults applied to every task.
type DefaultsConfig struct {
	Granularity   *int    `toml:"granularity"`
	QueueCapacity *int    `toml:"queue_capacity"`
	Overflow      *string `toml:"overflow"`
	MaxSegments   *int    `toml:"max_segments"`
}

// ThemeConfig holds optional color overrides.
type ThemeConfig struct {
	Green  *string `toml:"green"`
	Blue   *string `toml:"blue"`
	Yellow *string `toml:"yellow"`
	Red    *string `toml:"red"`
	Muted  *string `toml:"muted"`
	Bright *string `toml:"bright"`
}

// MaxFetchWaitDuration parses max_fetch_wait. It returns 0 when unset.
func (d DaemonConfig) MaxFetchWaitDuration() (time.Duration, error) {
	if d.MaxFetchWait == nil {
		return 0, nil
	}
	v, err := time.ParseDuration(*d.MaxFetchWait)
	if err != nil {
		return 0, fmt.Errorf("daemon.max_fetch_wait: %w", err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("daemon.max_fetch_wait must be positive, got %s", v)
	}
	return v, nil
}

// ConfigPath returns the resolved path to the config file.
func ConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "taskmap", "config.toml")
}

// RuntimeDir returns the per-user directory holding the daemon socket and
// discovery file: $XDG_RUNTIME_DIR/taskmap, or a uid-scoped temp directory.
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "taskmap")
	}
	return filepath.Join(os.TempDir(), "taskmap-"+strconv.Itoa(os.Getuid()))
}

// DefaultSocketPath returns the control socket path used when none is
// configured.
func DefaultSocketPath() string {
	return filepath.Join(RuntimeDir(), "taskmap.sock")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path. A missing file yields a zero
// Config.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}
