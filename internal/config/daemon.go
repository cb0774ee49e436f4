package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/BurntSushi/toml"
)

// ErrStaleDiscovery is returned by ReadDaemonDiscovery when the recorded
// daemon process no longer exists.
var ErrStaleDiscovery = errors.New("daemon discovery file is stale")

// DaemonDiscovery is what a running daemon publishes about itself: the
// control socket, and the TCP address plus certificate fingerprint when it
// also listens on the network.
type DaemonDiscovery struct {
	Socket      string `toml:"socket"`
	Addr        string `toml:"addr,omitempty"`
	Fingerprint string `toml:"fingerprint,omitempty"`
	PID         int    `toml:"pid"`
}

// DaemonDiscoveryPath returns the default discovery file location.
func DaemonDiscoveryPath() string {
	return filepath.Join(RuntimeDir(), "daemon.toml")
}

// WriteDaemonDiscovery replaces the discovery file at path. The file is
// written beside its final name and renamed into place, so readers never see
// a partial record.
func WriteDaemonDiscovery(path string, d DaemonDiscovery) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create runtime dir: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".daemon-*.toml")
	if err != nil {
		return fmt.Errorf("write daemon discovery: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // gone after a successful rename

	if err := toml.NewEncoder(f).Encode(d); err != nil {
		f.Close()
		return fmt.Errorf("encode daemon discovery: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write daemon discovery: %w", err)
	}
	return os.Rename(tmp, path)
}

// ReadDaemonDiscovery loads the discovery file at path. A missing file
// yields an error matching os.ErrNotExist. A record whose PID is not running
// is returned together with ErrStaleDiscovery.
func ReadDaemonDiscovery(path string) (DaemonDiscovery, error) {
	var d DaemonDiscovery
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return DaemonDiscovery{}, fmt.Errorf("read daemon discovery: %w", err)
	}
	if d.Socket == "" && d.Addr == "" {
		return DaemonDiscovery{}, fmt.Errorf("%s: no socket or addr recorded", path)
	}
	if d.PID > 0 && !processAlive(d.PID) {
		return d, fmt.Errorf("%w: pid %d", ErrStaleDiscovery, d.PID)
	}
	return d, nil
}

// RemoveDaemonDiscovery deletes the discovery file at path, ignoring errors.
func RemoveDaemonDiscovery(path string) {
	os.Remove(path) //nolint:errcheck // best-effort cleanup on shutdown
}

func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
