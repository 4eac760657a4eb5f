// Package cli wires nodewatch subcommands: the server process and direct
// store administration.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Run dispatches the command line and returns the process exit code.
func Run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if len(args) == 0 {
		return runServer(ctx, nil)
	}

	switch args[0] {
	case "server":
		return runServer(ctx, args[1:])
	case "node":
		return runNodeAdmin(ctx, args[1:])
	case "-h", "--help", "help":
		printUsage()
		return 0
	default:
		fmt.Fprintln(os.Stderr, "unknown command:", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Println(`nodewatch - node liveness registry and frps directory

Usage:
  nodewatch [server-flags]         # default: run the server
  nodewatch server [flags]
  nodewatch node ls [flags]
  nodewatch node rm --id <id> [flags]`)
}
