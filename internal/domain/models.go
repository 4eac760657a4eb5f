// Package domain defines the core data types shared across the nodewatch
// server, store, and poller layers.
package domain

import "time"

// Node status constants track the liveness state of a registered node.
const (
	// NodeStatusPending means the node registered but has never sent a
	// heartbeat.
	NodeStatusPending = "pending"

	// NodeStatusActive means a heartbeat was accepted within the staleness
	// window.
	NodeStatusActive = "active"

	// NodeStatusDown means the sweeper demoted the node after its
	// heartbeats went silent.
	NodeStatusDown = "down"
)

// Node represents a registered worker node.
//
// Credential is the secret issued at registration. It is revealed to the
// node exactly once, in the registration response, and must never appear in
// listing output or logs.
type Node struct {
	ID            int64
	Name          string
	Hostname      string
	DiskAvailable int64
	Status        string
	LastSeen      *time.Time
	Credential    string
}

// TunnelSnapshot is a point-in-time view of the frps dashboard: proxy client
// name to the ordered list of custom domains routing to it. A snapshot is
// always replaced wholesale, never merged.
type TunnelSnapshot struct {
	Clients   map[string][]string
	FetchedAt time.Time
}
