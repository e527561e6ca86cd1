package cmd

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcptrace/mcptrace/internal/config"
	"github.com/mcptrace/mcptrace/internal/proxy/bridge"
	"github.com/mcptrace/mcptrace/internal/proxy/bufferedclient"
	"github.com/mcptrace/mcptrace/internal/proxy/spawn"
	"github.com/mcptrace/mcptrace/internal/proxy/stats"
	"github.com/mcptrace/mcptrace/pkg/ipc"
)

var (
	proxyCommand    string
	proxyName       string
	proxyIPCSocket  string
	proxyShell      bool
	proxyNoMonitor  bool
	proxyVerbose    bool
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Spawn an MCP server and proxy its stdio, reporting to a monitor",
	RunE:  runProxy,
}

func init() {
	proxyCmd.Flags().StringVar(&proxyCommand, "command", "", "command to spawn (required)")
	proxyCmd.Flags().StringVar(&proxyName, "name", "", "proxy display name (default: mcp-proxy-<random>)")
	proxyCmd.Flags().StringVar(&proxyIPCSocket, "ipc-socket", "", "unix socket path to dial (default: from config)")
	proxyCmd.Flags().BoolVar(&proxyShell, "shell", true, "run command through the system shell")
	proxyCmd.Flags().BoolVar(&proxyNoMonitor, "no-monitor", false, "run without reporting to a monitor")
	proxyCmd.Flags().BoolVar(&proxyVerbose, "verbose", false, "enable debug logging")
	_ = proxyCmd.MarkFlagRequired("command")
	rootCmd.AddCommand(proxyCmd)
}

func runProxy(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(proxyCommand) == "" {
		return fmt.Errorf("mcptrace: no command specified, use --command to specify the MCP server command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("mcptrace: %w", err)
	}
	if proxyIPCSocket != "" {
		cfg.IPCSocket = proxyIPCSocket
	}

	name := proxyName
	if name == "" {
		name = synthesizeProxyName()
	}

	level := slog.LevelInfo
	if proxyVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).With("proxy", name)

	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	defer stop()

	proxyID := ipc.NewProxyID()
	childArgv := buildArgv(proxyCommand, proxyShell)
	child, err := spawn.Start(ctx, childArgv[0], childArgv[1:]...)
	if err != nil {
		return fmt.Errorf("mcptrace: spawn %q: %w", proxyCommand, err)
	}

	tracker := stats.New(proxyID)

	var sink bridge.Sink = func(ipc.Event) {}
	if !proxyNoMonitor {
		// The client's own lifecycle is intentionally not tied to ctx: if it
		// were, the ProxyStopped event sent below would race the worker's
		// shutdown and typically never reach the monitor. clientCancel is
		// only called after giving the worker a brief window to flush.
		clientCtx, clientCancel := context.WithCancel(context.Background())
		client := bufferedclient.New(cfg.IPCSocket, logger)
		go client.Run(clientCtx)

		client.Send(ipc.NewProxyStartedEvent(ipc.ProxyInfo{
			ID:            proxyID,
			Name:          name,
			TargetCommand: childArgv,
			Status:        ipc.ProxyStatus{Kind: ipc.StatusRunning},
			Stats:         tracker.Snapshot(),
		}))
		sink = client.Send

		defer func() {
			client.Send(ipc.NewProxyStoppedEvent(proxyID))
			time.Sleep(250 * time.Millisecond)
			clientCancel()
			client.Wait()
		}()
	}

	br := bridge.New(proxyID, child, tracker, sink, logger, cfg.StatsInterval)
	err = br.Run(ctx, os.Stdin, os.Stdout, os.Stderr)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// synthesizeProxyName mirrors spec §6's mcp-proxy-<6 random alphanumerics>.
func synthesizeProxyName() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "mcp-proxy-000000"
	}
	out := make([]byte, 6)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return "mcp-proxy-" + string(out)
}

func buildArgv(command string, useShell bool) []string {
	if useShell {
		return []string{"/bin/sh", "-c", command}
	}
	return strings.Fields(command)
}
