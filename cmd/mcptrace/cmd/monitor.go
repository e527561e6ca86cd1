package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mcptrace/mcptrace/internal/config"
	"github.com/mcptrace/mcptrace/internal/metrics"
	"github.com/mcptrace/mcptrace/internal/monitor/ipcserver"
	"github.com/mcptrace/mcptrace/internal/monitor/state"
	"github.com/mcptrace/mcptrace/internal/monitor/tui"
)

var (
	monitorIPCSocket string
	monitorVerbose   bool
	monitorMetrics   string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch events from one or more mcptrace proxies",
	RunE:  runMonitor,
}

func init() {
	registerMonitorFlags(monitorCmd)
	registerMonitorFlags(rootCmd)
	rootCmd.AddCommand(monitorCmd)
}

func registerMonitorFlags(c *cobra.Command) {
	c.Flags().StringVar(&monitorIPCSocket, "ipc-socket", "", "unix socket path to bind (default: from config)")
	c.Flags().BoolVar(&monitorVerbose, "verbose", false, "enable debug logging")
	c.Flags().StringVar(&monitorMetrics, "metrics-addr", "", "serve Prometheus metrics at this address (opt-in)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("mcptrace: %w", err)
	}
	if monitorIPCSocket != "" {
		cfg.IPCSocket = monitorIPCSocket
	}
	if monitorMetrics != "" {
		cfg.MetricsAddr = monitorMetrics
	}

	level := slog.LevelInfo
	if monitorVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	defer stop()

	srv, err := ipcserver.Bind(cfg.IPCSocket, logger)
	if err != nil {
		return fmt.Errorf("mcptrace: bind ipc socket: %w", err)
	}
	defer srv.Close()

	go func() {
		if err := srv.Serve(); err != nil {
			logger.Error("ipc server stopped", "error", err)
		}
	}()

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics.New(reg)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(reg))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error("metrics listener stopped", "error", err)
			}
		}()
	}

	app := state.NewWithCap(cfg.MaxLogs)
	model := tui.New(app, srv.Events(), cfg.TickRate)

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		opts = append(opts, tea.WithAltScreen())
	}

	program := tea.NewProgram(model, opts...)
	_, err = program.Run()
	return err
}
