// Package cmd provides the mcptrace CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcptrace/mcptrace/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mcptrace",
	Short: "mcptrace - MCP stdio proxy and monitor",
	Long: `mcptrace proxies a spawned MCP server's stdio while observing the
JSON-RPC traffic that passes through it, and monitors one or many such
proxies from a terminal UI.

No subcommand implies "monitor".

Configuration:
  Config is loaded from mcptrace.yaml in the current directory,
  $HOME/.mcptrace/, or /etc/mcptrace/.

  Environment variables override config values with the MCPTRACE_ prefix.
  Example: MCPTRACE_IPC_SOCKET=/tmp/custom.sock`,
	RunE: runMonitor,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./mcptrace.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
