package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nshafer/rws"
)

var errGaveUp = errors.New("gave up reconnecting")

type connectFlags struct {
	retryInterval string
	giveUpAfter   string
	logLevel      string
	metricsAddr   string
}

func newConnectCommand(configFlag *string) *cobra.Command {
	var flags connectFlags

	cmd := &cobra.Command{
		Use:   "connect [ws[s]://host[:port]/path]",
		Short: "Connect to a websocket endpoint and keep the connection alive",
		Long: `Connect to a websocket endpoint, print every message received and send
each line read from stdin. Lines starting with ':' are commands:

  :s  show connection status
  :c  close the current connection (it will be re-established)
  :q  quit
  :h  help`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Endpoint = args[0]
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runConnect(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.retryInterval, "retry-interval", "", "Time between reconnect attempts (ms, Go duration, \"hour\" or \"day\")")
	cmd.Flags().StringVar(&flags.giveUpAfter, "give-up-after", "", "Give up after retrying this long; 0 retries forever")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warning, error")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address")

	return cmd
}

func (f *connectFlags) apply(cmd *cobra.Command, cfg *Config) error {
	if cmd.Flags().Changed("retry-interval") {
		d, err := rws.ParseDuration(f.retryInterval)
		if err != nil {
			return fmt.Errorf("--retry-interval: %w", err)
		}
		cfg.RetryInterval = d
	}
	if cmd.Flags().Changed("give-up-after") {
		d, err := rws.ParseDuration(f.giveUpAfter)
		if err != nil {
			return fmt.Errorf("--give-up-after: %w", err)
		}
		cfg.GiveUpAfter = d
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	return nil
}

// lockedWriter serializes writes from event handlers and the input loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func runConnect(ctx context.Context, cfg *Config, in io.Reader, w io.Writer) error {
	out := &lockedWriter{w: w}

	level, err := rws.ParseLoggerLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := rws.NewSimpleLogger(level)
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	metrics := rws.NewMetrics(reg, "")
	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf(rws.LogError, "metrics", "Metrics server failed: %s", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	factory := rws.NewWebsocketFactory(&websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: cfg.HandshakeTimeout,
	})
	factory.Logger = logger
	factory.PingInterval = cfg.PingInterval

	fmt.Fprintf(out, "Connecting to '%s', ':h' for help, ':q' to exit\n", cfg.Endpoint)
	socket, err := rws.NewSocket(cfg.Endpoint,
		rws.WithRetryInterval(cfg.RetryInterval),
		rws.WithGiveUpAfter(cfg.GiveUpAfter),
		rws.WithLogger(logger),
		rws.WithMetrics(metrics),
		rws.WithFactory(factory),
		rws.WithOnReconnect(func(attempts int) {
			fmt.Fprintf(out, "+ reconnected after %d attempt(s)\n", attempts)
		}),
	)
	if err != nil {
		return err
	}
	defer func() { _ = socket.Stop() }()

	socket.AddEventListener(rws.EventOpen, func(rws.Event) {
		fmt.Fprintln(out, "+ connected")
	}, rws.ListenerOptions{})
	socket.AddEventListener(rws.EventClose, func(ev rws.Event) {
		fmt.Fprintf(out, "x disconnected (%d %s)\n", ev.Code, ev.Reason)
	}, rws.ListenerOptions{})
	socket.AddEventListener(rws.EventError, func(ev rws.Event) {
		fmt.Fprintf(out, "! %v\n", ev.Err)
	}, rws.ListenerOptions{})
	socket.AddEventListener(rws.EventMessage, func(ev rws.Event) {
		fmt.Fprintf(out, "< %s\n", ev.Data)
	}, rws.ListenerOptions{})

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-socket.GaveUp():
			return fmt.Errorf("%w to %s after %s", errGaveUp, cfg.Endpoint, cfg.GiveUpAfter)

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleLine(socket, strings.TrimSpace(line), out); quit {
				return nil
			}
		}
	}
}

func handleLine(socket *rws.Socket, line string, out io.Writer) (quit bool) {
	switch line {
	case "":
	case ":q":
		return true
	case ":h":
		usage(out)
	case ":s":
		fmt.Fprintf(out, "Endpoint: %s\n", socket.Endpoint())
		fmt.Fprintf(out, "Connection: %v\n", socket.State())
		fmt.Fprintf(out, "Attempt: %d\n", socket.Attempts())
	case ":c":
		if err := socket.Close(); err != nil {
			fmt.Fprintln(out, err)
		}
	default:
		if err := socket.Send(rws.TextMessage, []byte(line)); err != nil {
			fmt.Fprintln(out, err)
		}
	}
	return false
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  :s - status")
	fmt.Fprintln(out, "  :c - close the connection and let it reconnect")
	fmt.Fprintln(out, "  :q - quit")
	fmt.Fprintln(out, "  anything else is sent as a text message")
}
