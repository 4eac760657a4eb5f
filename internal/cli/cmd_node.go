package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lunes-host/nodewatch/internal/domain"
	"github.com/lunes-host/nodewatch/internal/store/sqlite"
)

// Node administration operates on the store directly and never requires a
// node credential.
func runNodeAdmin(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: nodewatch node <ls|rm> [flags]")
		return 2
	}
	switch args[0] {
	case "ls":
		return runNodeList(ctx, args[1:])
	case "rm":
		return runNodeRemove(ctx, args[1:])
	default:
		fmt.Fprintln(os.Stderr, "unknown node command:", args[0])
		return 2
	}
}

func runNodeList(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("node-ls", flag.ContinueOnError)
	var dbPath string
	fs.StringVar(&dbPath, "db", envOr("NODEWATCH_DB_PATH", "./information.db"), "sqlite db path")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db error:", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	nodes, err := store.ListNodes(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "node ls error:", err)
		return 1
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tHOSTNAME\tDISK\tSTATUS\tLAST SEEN")
	for _, n := range nodes {
		lastSeen := "-"
		if n.LastSeen != nil {
			lastSeen = n.LastSeen.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", n.ID, n.Name, n.Hostname, n.DiskAvailable, n.Status, lastSeen)
	}
	_ = w.Flush()
	return 0
}

func runNodeRemove(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("node-rm", flag.ContinueOnError)
	var dbPath string
	var id int64
	fs.StringVar(&dbPath, "db", envOr("NODEWATCH_DB_PATH", "./information.db"), "sqlite db path")
	fs.Int64Var(&id, "id", 0, "node id to remove")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if id <= 0 {
		fmt.Fprintln(os.Stderr, "node rm error: missing --id")
		return 2
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db error:", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	if err := store.DeleteNode(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNodeNotFound) {
			fmt.Fprintln(os.Stderr, "node rm error: no node with id", id)
			return 1
		}
		fmt.Fprintln(os.Stderr, "node rm error:", err)
		return 1
	}
	fmt.Println("removed node", id)
	return 0
}
