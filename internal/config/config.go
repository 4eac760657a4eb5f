// Package config parses nodewatch server configuration from environment
// variables and command-line flags.
package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds all settings for the nodewatch server process.
type ServerConfig struct {
	Listen          string
	DBPath          string
	LogLevel        string
	RequestTimeout  time.Duration
	MaxBodyBytes    int64
	SweepInterval   time.Duration
	StalenessWindow time.Duration

	// frps dashboard poller.
	DashboardURL      string
	DashboardUser     string
	DashboardPassword string
	RefreshInterval   time.Duration

	// Live watch endpoint push period.
	WatchPushInterval time.Duration

	// TLS: "off" serves plain HTTP on Listen; "auto" provisions a
	// certificate for Domain via ACME.
	TLSMode      string
	Domain       string
	CertCacheDir string

	DBMaxOpenConns int
	DBMaxIdleConns int
}

const defaultListen = ":5000"
const defaultDBPath = "./information.db"
const defaultSweepInterval = 60 * time.Second
const defaultStalenessWindow = 10 * time.Minute
const defaultRefreshInterval = 5 * time.Second
const defaultWatchPushInterval = 5 * time.Second
const defaultRequestTimeout = 10 * time.Second
const defaultMaxBodyBytes = 1 << 20
const defaultCertCacheDir = "./cert"

// ParseServerFlags builds a ServerConfig from NODEWATCH_* environment
// variables overridden by flags, and validates it.
func ParseServerFlags(args []string) (ServerConfig, error) {
	cfg := ServerConfig{
		Listen:            envOrDefault("NODEWATCH_LISTEN", defaultListen),
		DBPath:            envOrDefault("NODEWATCH_DB_PATH", defaultDBPath),
		LogLevel:          envOrDefault("NODEWATCH_LOG_LEVEL", "info"),
		RequestTimeout:    envDurationOrDefault("NODEWATCH_REQUEST_TIMEOUT", defaultRequestTimeout),
		MaxBodyBytes:      envInt64OrDefault("NODEWATCH_MAX_BODY_BYTES", defaultMaxBodyBytes),
		SweepInterval:     envDurationOrDefault("NODEWATCH_SWEEP_INTERVAL", defaultSweepInterval),
		StalenessWindow:   envDurationOrDefault("NODEWATCH_STALENESS_WINDOW", defaultStalenessWindow),
		DashboardURL:      envOrDefault("NODEWATCH_FRPS_URL", ""),
		DashboardUser:     envOrDefault("NODEWATCH_FRPS_USER", ""),
		DashboardPassword: envOrDefault("NODEWATCH_FRPS_PASSWORD", ""),
		RefreshInterval:   envDurationOrDefault("NODEWATCH_FRPS_REFRESH_INTERVAL", defaultRefreshInterval),
		WatchPushInterval: envDurationOrDefault("NODEWATCH_WATCH_PUSH_INTERVAL", defaultWatchPushInterval),
		TLSMode:           envOrDefault("NODEWATCH_TLS_MODE", "off"),
		Domain:            envOrDefault("NODEWATCH_DOMAIN", ""),
		CertCacheDir:      envOrDefault("NODEWATCH_CERT_CACHE_DIR", defaultCertCacheDir),
		DBMaxOpenConns:    envIntOrDefault("NODEWATCH_DB_MAX_OPEN_CONNS", 0),
		DBMaxIdleConns:    envIntOrDefault("NODEWATCH_DB_MAX_IDLE_CONNS", 0),
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "Listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "How often stale nodes are swept")
	fs.DurationVar(&cfg.StalenessWindow, "staleness-window", cfg.StalenessWindow, "Heartbeat silence before a node is marked down")
	fs.StringVar(&cfg.DashboardURL, "frps-url", cfg.DashboardURL, "frps dashboard base URL (empty disables the poller)")
	fs.StringVar(&cfg.DashboardUser, "frps-user", cfg.DashboardUser, "frps dashboard basic auth user")
	fs.StringVar(&cfg.DashboardPassword, "frps-password", cfg.DashboardPassword, "frps dashboard basic auth password")
	fs.DurationVar(&cfg.RefreshInterval, "frps-refresh-interval", cfg.RefreshInterval, "frps dashboard poll period")
	fs.DurationVar(&cfg.WatchPushInterval, "watch-push-interval", cfg.WatchPushInterval, "Watch endpoint push period")
	fs.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "Per-request store timeout")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", cfg.MaxBodyBytes, "Request body size limit in bytes")
	fs.StringVar(&cfg.TLSMode, "tls-mode", cfg.TLSMode, "TLS mode: off|auto")
	fs.StringVar(&cfg.Domain, "domain", cfg.Domain, "Public domain for ACME TLS (required with --tls-mode=auto)")
	fs.StringVar(&cfg.CertCacheDir, "cert-cache-dir", cfg.CertCacheDir, "TLS cert cache dir")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if strings.TrimSpace(cfg.Listen) == "" {
		return cfg, errors.New("missing --listen or NODEWATCH_LISTEN")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("missing --db or NODEWATCH_DB_PATH")
	}
	if cfg.SweepInterval <= 0 {
		return cfg, errors.New("sweep interval must be > 0")
	}
	if cfg.StalenessWindow <= 0 {
		return cfg, errors.New("staleness window must be > 0")
	}
	// A window shorter than the sweep period flaps nodes on ordinary
	// network jitter.
	if cfg.StalenessWindow < cfg.SweepInterval {
		return cfg, errors.New("staleness window must be >= sweep interval")
	}
	if cfg.RefreshInterval <= 0 {
		return cfg, errors.New("frps refresh interval must be > 0")
	}
	if cfg.WatchPushInterval <= 0 {
		return cfg, errors.New("watch push interval must be > 0")
	}
	if cfg.RequestTimeout <= 0 {
		return cfg, errors.New("request timeout must be > 0")
	}
	if cfg.MaxBodyBytes <= 0 {
		return cfg, errors.New("max body bytes must be > 0")
	}

	cfg.TLSMode = strings.ToLower(strings.TrimSpace(cfg.TLSMode))
	switch cfg.TLSMode {
	case "off", "auto":
	default:
		return cfg, errors.New("tls mode must be one of: off, auto")
	}
	cfg.Domain = normalizeDomainHost(cfg.Domain)
	if cfg.TLSMode == "auto" && cfg.Domain == "" {
		return cfg, errors.New("tls mode auto requires --domain or NODEWATCH_DOMAIN")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt64OrDefault(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envIntOrDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func normalizeDomainHost(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	v = strings.TrimPrefix(v, "https://")
	v = strings.TrimPrefix(v, "http://")
	if idx := strings.Index(v, "/"); idx >= 0 {
		v = v[:idx]
	}
	if strings.Contains(v, ":") {
		parts := strings.Split(v, ":")
		v = parts[0]
	}
	return strings.TrimSuffix(v, ".")
}
