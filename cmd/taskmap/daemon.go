package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bamsammich/taskmap/internal/bitmap"
	"github.com/bamsammich/taskmap/internal/config"
	"github.com/bamsammich/taskmap/internal/event"
	"github.com/bamsammich/taskmap/internal/stats"
	"github.com/bamsammich/taskmap/internal/task"
	"github.com/bamsammich/taskmap/internal/transport/proto"
	"github.com/bamsammich/taskmap/internal/ui"
	"github.com/bamsammich/taskmap/internal/watch"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the taskmap daemon",
	Long: `Run the daemon that owns the task registry.

The daemon serves the control protocol on a unix socket readable only by its
owner. With --listen it also accepts TLS connections; clients pin the
certificate by fingerprint or trust it on first use. The certificate is
generated on first run next to the config file unless --tls-cert and
--tls-key are given.

Every --watch directory is watched recursively and each filesystem change is
published to the registered tasks whose scope and mask match it.

The daemon writes a discovery file with its socket, address and certificate
fingerprint so other taskmap commands find it without flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDaemon,
}

func init() {
	addDaemonFlags(daemonCmd.Flags())
}

func addDaemonFlags(f *pflag.FlagSet) {
	f.String("listen", "", "TLS listen address (host:port); empty disables TCP")
	f.String("tls-cert", "", "path to TLS certificate file")
	f.String("tls-key", "", "path to TLS private key file")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address")
	f.StringArray("watch", nil, "directory to watch for changes (repeatable)")
	f.Int("max-tasks", task.DefaultMaxTasks, "maximum concurrently registered tasks")
	f.Int("queue-capacity", event.DefaultCapacity, "per-task event queue capacity (negative for unbounded)")
	f.String("overflow", event.DropOldest.String(), "queue overflow policy (drop-oldest or reject-new)")
	f.Uint32("granularity", bitmap.DefaultGranularity, "default block size in bytes for new tasks")
	f.Int("max-segments", bitmap.DefaultMaxSegments, "maximum bitmap segments per task")
	f.Duration("max-fetch-wait", 0, "upper bound on a client's fetch wait (0 for the built-in default)")
	f.Float64("rps", 0, "per-connection request rate limit (0 disables)")
}

// daemonSettings is the merged view of daemon flags and config.
type daemonSettings struct {
	overflow     string
	socket       string
	listen       string
	tlsCert      string
	tlsKey       string
	metricsAddr  string
	watch        []string
	maxTasks     int
	queueCap     int
	maxSegments  int
	maxFetchWait time.Duration
	rps          float64
	granularity  uint32
	compress     bool
}

//nolint:revive // cyclomatic: each setting may come from a flag or the config file
func loadDaemonSettings(fl *pflag.FlagSet, cfg config.Config) (daemonSettings, error) {
	var s daemonSettings
	s.socket, _ = fl.GetString("socket")                 //nolint:errcheck // flag name is hardcoded
	s.compress, _ = fl.GetBool("compress")               //nolint:errcheck // flag name is hardcoded
	s.listen, _ = fl.GetString("listen")                 //nolint:errcheck // flag name is hardcoded
	s.tlsCert, _ = fl.GetString("tls-cert")              //nolint:errcheck // flag name is hardcoded
	s.tlsKey, _ = fl.GetString("tls-key")                //nolint:errcheck // flag name is hardcoded
	s.metricsAddr, _ = fl.GetString("metrics-addr")      //nolint:errcheck // flag name is hardcoded
	s.watch, _ = fl.GetStringArray("watch")              //nolint:errcheck // flag name is hardcoded
	s.maxTasks, _ = fl.GetInt("max-tasks")               //nolint:errcheck // flag name is hardcoded
	s.queueCap, _ = fl.GetInt("queue-capacity")          //nolint:errcheck // flag name is hardcoded
	s.overflow, _ = fl.GetString("overflow")             //nolint:errcheck // flag name is hardcoded
	s.granularity, _ = fl.GetUint32("granularity")       //nolint:errcheck // flag name is hardcoded
	s.maxSegments, _ = fl.GetInt("max-segments")         //nolint:errcheck // flag name is hardcoded
	s.maxFetchWait, _ = fl.GetDuration("max-fetch-wait") //nolint:errcheck // flag name is hardcoded
	s.rps, _ = fl.GetFloat64("rps")                      //nolint:errcheck // flag name is hardcoded

	d := cfg.Daemon
	if !fl.Changed("socket") && d.Socket != nil {
		s.socket = *d.Socket
	}
	if s.socket == "" {
		s.socket = config.DefaultSocketPath()
	}
	if !fl.Changed("listen") && d.Listen != nil {
		s.listen = *d.Listen
	}
	if !fl.Changed("tls-cert") && d.TLSCert != nil {
		s.tlsCert = *d.TLSCert
	}
	if !fl.Changed("tls-key") && d.TLSKey != nil {
		s.tlsKey = *d.TLSKey
	}
	if !fl.Changed("compress") && d.Compress != nil {
		s.compress = *d.Compress
	}
	if !fl.Changed("metrics-addr") && d.MetricsAddr != nil {
		s.metricsAddr = *d.MetricsAddr
	}
	if !fl.Changed("watch") && len(d.Watch) > 0 {
		s.watch = d.Watch
	}
	if !fl.Changed("max-tasks") && d.MaxTasks != nil {
		s.maxTasks = *d.MaxTasks
	}
	if !fl.Changed("max-fetch-wait") {
		v, err := d.MaxFetchWaitDuration()
		if err != nil {
			return s, err
		}
		if v > 0 {
			s.maxFetchWait = v
		}
	}
	if !fl.Changed("rps") && d.RequestsPerSecond != nil {
		s.rps = *d.RequestsPerSecond
	}

	def := cfg.Defaults
	if !fl.Changed("granularity") && def.Granularity != nil {
		if *def.Granularity <= 0 {
			return s, fmt.Errorf("defaults.granularity must be positive, got %d", *def.Granularity)
		}
		s.granularity = uint32(*def.Granularity) //nolint:gosec // G115: validated positive
	}
	if !fl.Changed("queue-capacity") && def.QueueCapacity != nil {
		s.queueCap = *def.QueueCapacity
	}
	if !fl.Changed("overflow") && def.Overflow != nil {
		s.overflow = *def.Overflow
	}
	if !fl.Changed("max-segments") && def.MaxSegments != nil {
		s.maxSegments = *def.MaxSegments
	}

	if s.queueCap == 0 {
		return s, errors.New("queue capacity must be non-zero")
	}
	return s, nil
}

// loadCert returns the configured certificate, or the persistent self-signed
// one stored beside the config file.
func loadCert(s daemonSettings) (tls.Certificate, error) {
	if s.tlsCert != "" || s.tlsKey != "" {
		if s.tlsCert == "" || s.tlsKey == "" {
			return tls.Certificate{}, errors.New("--tls-cert and --tls-key must be given together")
		}
		cert, err := tls.LoadX509KeyPair(s.tlsCert, s.tlsKey)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("load TLS certificate: %w", err)
		}
		return cert, nil
	}
	host, _, _ := net.SplitHostPort(s.listen) //nolint:errcheck // listen reports a bad address
	dir := filepath.Dir(config.ConfigPath())
	cert, _, err := proto.LoadOrGenerateCert(
		filepath.Join(dir, "daemon.crt"),
		filepath.Join(dir, "daemon.key"),
		host,
	)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("TLS cert: %w", err)
	}
	return cert, nil
}

//nolint:revive // cyclomatic: settings + listeners + discovery + background services
func runDaemon(cmd *cobra.Command, _ []string) error {
	s, err := loadDaemonSettings(cmd.Flags(), opts.cfg)
	if err != nil {
		return err
	}
	policy, err := event.ParsePolicy(s.overflow)
	if err != nil {
		return fmt.Errorf("invalid --overflow: %w", err)
	}

	collector := stats.NewCollector()
	reg := task.NewRegistry(task.Config{
		Stats:         collector,
		MaxTasks:      s.maxTasks,
		QueueCapacity: s.queueCap,
		Policy:        policy,
		MaxSegments:   s.maxSegments,
	})
	defer reg.Close()

	dcfg := proto.DaemonConfig{
		Registry:          reg,
		Socket:            s.socket,
		ListenAddr:        s.listen,
		MaxFetchWait:      s.maxFetchWait,
		RequestsPerSecond: s.rps,
		Granularity:       s.granularity,
		Compress:          s.compress,
	}
	if s.listen != "" {
		cert, certErr := loadCert(s)
		if certErr != nil {
			return certErr
		}
		dcfg.TLSCert = &cert
	}

	daemon, err := proto.NewDaemon(dcfg)
	if err != nil {
		return err
	}

	disc := config.DaemonDiscovery{
		Socket:      daemon.SocketPath(),
		Fingerprint: daemon.Fingerprint(),
		PID:         os.Getpid(),
	}
	if addr := daemon.Addr(); addr != nil {
		disc.Addr = addr.String()
	}
	discPath := config.DaemonDiscoveryPath()
	if err := config.WriteDaemonDiscovery(discPath, disc); err != nil {
		slog.Warn("failed to write daemon discovery file", "error", err)
	}
	defer config.RemoveDaemonDiscovery(discPath)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return daemon.Serve(gctx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				collector.Tick()
			}
		}
	})

	if s.metricsAddr != "" {
		if _, err := serveMetrics(gctx, g, s.metricsAddr, collector); err != nil {
			stop()
			_ = g.Wait()
			return err
		}
	}

	if len(s.watch) > 0 {
		w, err := watch.New(gctx, watch.Config{Publisher: reg, Roots: s.watch})
		if err != nil {
			stop()
			_ = g.Wait()
			return fmt.Errorf("watch: %w", err)
		}
		slog.Info("watching for changes", "roots", s.watch, "dirs", w.Dirs())
		g.Go(func() error {
			<-gctx.Done()
			w.Close()
			return nil
		})
	}

	err = g.Wait()
	slog.Info("daemon exiting",
		"uptime", ui.FormatDuration(collector.Elapsed()),
		"stats", collector.Snapshot().String())
	return err
}

// serveMetrics exposes the collector on addr at /metrics until ctx ends and
// returns the bound address.
func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, c *stats.Collector) (net.Addr, error) {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(c)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("serving metrics", "addr", ln.Addr().String())

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return ln.Addr(), nil
}
