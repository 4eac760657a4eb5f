// Package frps polls an frps reverse-tunnel dashboard and maintains a
// read-only snapshot of which proxy clients are online and which custom
// domains route to them.
package frps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lunes-host/nodewatch/internal/domain"
)

const defaultFetchTimeout = 5 * time.Second

// Directory fetches the frps HTTP proxy listing and keeps the latest
// successful snapshot. A failed poll retains the previous snapshot rather
// than clearing it.
type Directory struct {
	dashboardURL string
	user         string
	password     string
	client       *http.Client
	log          *slog.Logger

	mu       sync.RWMutex
	snapshot domain.TunnelSnapshot
}

// New creates a Directory for the dashboard at dashboardURL. user and
// password are optional basic auth credentials.
func New(dashboardURL, user, password string, logger *slog.Logger) *Directory {
	return &Directory{
		dashboardURL: strings.TrimRight(strings.TrimSpace(dashboardURL), "/"),
		user:         user,
		password:     password,
		client:       &http.Client{Timeout: defaultFetchTimeout},
		log:          logger,
	}
}

// Enabled reports whether a dashboard URL is configured.
func (d *Directory) Enabled() bool {
	return d.dashboardURL != ""
}

// Snapshot returns the most recent successful snapshot. The zero snapshot is
// returned before the first successful poll.
func (d *Directory) Snapshot() domain.TunnelSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// Poll fetches the proxy listing once and, on success, replaces the current
// snapshot wholesale.
func (d *Directory) Poll(ctx context.Context) error {
	if !d.Enabled() {
		return errors.New("frps dashboard not configured")
	}
	snap, err := d.fetch(ctx)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.snapshot = snap
	d.mu.Unlock()
	return nil
}

// Run polls on the given interval until ctx is canceled. Fetch failures are
// logged and the previous snapshot is kept for the next readers.
func (d *Directory) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := d.Poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.log.Warn("frps dashboard poll failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type proxyListing struct {
	Proxies []struct {
		Name string `json:"name"`
		Conf struct {
			CustomDomains []string `json:"custom_domains"`
		} `json:"conf"`
	} `json:"proxies"`
}

func (d *Directory) fetch(ctx context.Context) (domain.TunnelSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.dashboardURL+"/api/proxy/http", nil)
	if err != nil {
		return domain.TunnelSnapshot{}, err
	}
	if d.user != "" && d.password != "" {
		req.SetBasicAuth(d.user, d.password)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return domain.TunnelSnapshot{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return domain.TunnelSnapshot{}, fmt.Errorf("dashboard returned %s", resp.Status)
	}

	var listing proxyListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return domain.TunnelSnapshot{}, fmt.Errorf("decode proxy listing: %w", err)
	}

	clients := make(map[string][]string, len(listing.Proxies))
	for _, proxy := range listing.Proxies {
		if proxy.Name == "" {
			continue
		}
		domains := make([]string, len(proxy.Conf.CustomDomains))
		copy(domains, proxy.Conf.CustomDomains)
		clients[proxy.Name] = domains
	}
	return domain.TunnelSnapshot{Clients: clients, FetchedAt: time.Now().UTC()}, nil
}
