package main

import (
	"os"

	"github.com/lunes-host/nodewatch/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
