package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lunes-host/nodewatch/internal/config"
	"github.com/lunes-host/nodewatch/internal/frps"
	ilog "github.com/lunes-host/nodewatch/internal/log"
	"github.com/lunes-host/nodewatch/internal/server"
	"github.com/lunes-host/nodewatch/internal/store/sqlite"
)

func runServer(ctx context.Context, args []string) int {
	loadEnvFromDotEnv(".env")

	cfg, err := config.ParseServerFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "server config error:", err)
		return 2
	}
	logger := ilog.New(cfg.LogLevel)

	store, err := sqlite.OpenWithOptions(cfg.DBPath, sqlite.OpenOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "db error:", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	directory := frps.New(cfg.DashboardURL, cfg.DashboardUser, cfg.DashboardPassword, logger)

	s := server.New(cfg, store, directory, logger)
	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "server error:", err)
		return 1
	}
	return 0
}
