// Command mcptrace is a unified binary: it proxies a spawned MCP server's
// stdio while emitting observation events, and separately monitors those
// events in a terminal UI. See cmd/mcptrace/cmd for the subcommands.
package main

import "github.com/mcptrace/mcptrace/cmd/mcptrace/cmd"

func main() {
	cmd.Execute()
}
