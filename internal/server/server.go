// Package server implements the nodewatch HTTP API: node registration,
// credential-authenticated heartbeats, registry listing, the liveness
// sweeper, and the operator page backed by the frps directory snapshot.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/acme/autocert"

	"github.com/lunes-host/nodewatch/internal/config"
	"github.com/lunes-host/nodewatch/internal/frps"
	"github.com/lunes-host/nodewatch/internal/store/sqlite"
)

// Server owns the HTTP listeners and the background sweep loop. The sqlite
// store is the single source of truth; request handlers and the sweeper
// coordinate only through it.
type Server struct {
	cfg       config.ServerConfig
	store     *sqlite.Store
	directory *frps.Directory
	log       *slog.Logger

	sweeping atomic.Bool
}

const shutdownTimeout = 10 * time.Second

// New creates a Server. directory may be disabled (no dashboard URL); the
// operator page then renders an empty table.
func New(cfg config.ServerConfig, store *sqlite.Store, directory *frps.Directory, logger *slog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		directory: directory,
		log:       logger,
	}
}

// Run starts the background loops and serves the API until ctx is canceled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.runSweeper(ctx)
	if s.directory.Enabled() {
		go s.directory.Run(ctx, s.cfg.RefreshInterval)
	} else {
		s.log.Info("frps dashboard poller disabled; no dashboard URL configured")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/nodes/register", s.handleRegister)
	mux.HandleFunc("/v1/nodes/heartbeat", s.handleHeartbeat)
	mux.HandleFunc("/v1/nodes/watch", s.handleWatch)
	mux.HandleFunc("/v1/nodes", s.handleList)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", s.handleIndex)

	httpServer := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	if s.cfg.TLSMode == "auto" {
		manager := &autocert.Manager{
			Cache:      autocert.DirCache(s.cfg.CertCacheDir),
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(s.cfg.Domain),
		}
		httpServer.TLSConfig = manager.TLSConfig()
		go func() {
			s.log.Info("nodewatch server listening", "addr", s.cfg.Listen, "tls", "auto", "domain", s.cfg.Domain)
			errCh <- httpServer.ListenAndServeTLS("", "")
		}()
	} else {
		go func() {
			s.log.Info("nodewatch server listening", "addr", s.cfg.Listen, "tls", "off")
			errCh <- httpServer.ListenAndServe()
		}()
	}

	select {
	case <-ctx.Done():
		s.log.Info("shutting down")
		return shutdownServer(httpServer, shutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}

func shutdownServer(server *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
}

const (
	errCodeValidation   = "validation_failed"
	errCodeUnauthorized = "not_authorized"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
}
