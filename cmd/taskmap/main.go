package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/taskmap/internal/config"
	"github.com/bamsammich/taskmap/internal/fault"
	"github.com/bamsammich/taskmap/internal/transport/proto"
	"github.com/bamsammich/taskmap/internal/ui"
)

var version = "dev"

// globalOpts holds the persistent flags shared by every subcommand.
type globalOpts struct {
	cfg         config.Config
	configPath  string
	socket      string
	addr        string
	fingerprint string
	logFile     string
	compress    bool
	verbose     bool
	quiet       bool
	timeout     time.Duration
}

var opts globalOpts //nolint:gochecknoglobals // cobra flag storage

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := &cobra.Command{
		Use:   "taskmap",
		Short: "Track changed file blocks for registered tasks",
		Long: `taskmap keeps per-task block bitmaps and change-event queues in a
long-running daemon. Clients register a task, then fetch the change events
the daemon observed and mark the blocks they have processed.

Start the daemon with 'taskmap daemon'. Other commands find it through the
--socket or --addr flags, the config file, or the discovery file the daemon
writes on startup.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/taskmap/config.toml)")
	pf.StringVar(&opts.socket, "socket", "", "daemon control socket")
	pf.StringVar(&opts.addr, "addr", "", "daemon TCP address (host:port), uses TLS")
	pf.StringVar(&opts.fingerprint, "fingerprint", "", "expected daemon certificate fingerprint (SHA256:...)")
	pf.BoolVar(&opts.compress, "compress", false, "request zstd compression")
	pf.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "only log warnings and errors")
	pf.StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")

	rootCmd.AddCommand(
		daemonCmd,
		registerCmd,
		deregisterCmd,
		markCmd,
		unmarkCmd,
		checkCmd,
		fetchCmd,
		listCmd,
		pingCmd,
		hostsCmd,
		docsCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		ui.NewTerminalReport(os.Stderr).Error(err)
		return 2
	}

	return 0
}

// setup loads the config file and installs the default logger.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	if opts.configPath != "" {
		opts.cfg, err = config.LoadFile(opts.configPath)
	} else {
		opts.cfg, err = config.Load()
	}

	logLevel := slog.LevelWarn
	if opts.verbose {
		logLevel = slog.LevelDebug
	} else if !opts.quiet && cmd.Name() == "daemon" {
		logLevel = slog.LevelInfo
	}
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	var logHandler slog.Handler = textHandler
	if opts.logFile != "" {
		lf, lfErr := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if lfErr != nil {
			return fmt.Errorf("open log file: %w", lfErr)
		}
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	slog.SetDefault(slog.New(logHandler))

	if err != nil {
		slog.Warn("failed to load config", "error", err)
	}
	ui.ApplyTheme(opts.cfg.Theme)
	return nil
}

// dialConfig resolves which daemon to talk to: explicit flags first, then the
// config file, then the discovery file, then the default socket.
func dialConfig() (proto.DialConfig, error) {
	dc := proto.DialConfig{
		Socket:      opts.socket,
		Addr:        opts.addr,
		Fingerprint: opts.fingerprint,
		Compress:    opts.compress,
	}

	if dc.Socket == "" && dc.Addr == "" {
		if s := opts.cfg.Daemon.Socket; s != nil {
			dc.Socket = *s
		}
	}
	if dc.Socket == "" && dc.Addr == "" {
		if d, err := config.ReadDaemonDiscovery(config.DaemonDiscoveryPath()); err == nil {
			dc.Socket = d.Socket
			if dc.Socket == "" {
				dc.Addr = d.Addr
				if dc.Fingerprint == "" {
					dc.Fingerprint = d.Fingerprint
				}
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			slog.Debug("ignoring daemon discovery file", "error", err)
		}
	}
	if dc.Socket == "" && dc.Addr == "" {
		dc.Socket = config.DefaultSocketPath()
	}

	if dc.Addr != "" && dc.Fingerprint == "" {
		kh, err := proto.LoadKnownHosts("")
		if err != nil {
			return proto.DialConfig{}, fmt.Errorf("known hosts: %w", err)
		}
		dc.KnownHosts = kh
	}
	return dc, nil
}

// withClient dials the daemon, runs fn with a request-scoped context and
// closes the connection.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *proto.Client) error) error {
	dc, err := dialConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	c, err := proto.Dial(ctx, dc)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	defer c.Close() //nolint:errcheck // connection teardown after the request completed

	slog.Debug("connected",
		"socket", dc.Socket, "addr", dc.Addr,
		"granularity", c.HandshakeInfo().Granularity,
		"compress", c.HandshakeInfo().Compress)

	return fn(ctx, c)
}

// report returns the stdout report, styled when stdout is a terminal.
func report() *ui.Report {
	return ui.NewTerminalReport(os.Stdout)
}

// failed prints err through the report and maps its fault code to the exit
// status.
func failed(err error) error {
	ui.NewTerminalReport(os.Stderr).Error(err)
	return &exitError{code: 1 + int(fault.Code(err))}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
