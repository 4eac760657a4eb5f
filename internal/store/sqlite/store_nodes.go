package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lunes-host/nodewatch/internal/domain"
)

// CreateNode inserts a new node record with status pending, no last_seen, and
// the supplied credential. The store assigns the id.
func (s *Store) CreateNode(ctx context.Context, name, hostname string, diskAvailable int64, credential string) (domain.Node, error) {
	n := domain.Node{
		Name:          name,
		Hostname:      hostname,
		DiskAvailable: diskAvailable,
		Status:        domain.NodeStatusPending,
		Credential:    credential,
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO nodes(name, hostname, disk_available, status, last_seen, credential)
VALUES(?, ?, ?, ?, NULL, ?)`, n.Name, n.Hostname, n.DiskAvailable, n.Status, n.Credential)
	if err != nil {
		return domain.Node{}, err
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Node{}, err
	}
	return n, nil
}

// ApplyHeartbeat authenticates a heartbeat and marks the node active with a
// fresh last_seen in one statement: the credential check lives in the UPDATE
// predicate, so there is no read-then-write window and concurrent sweeps only
// ever contend on the single atomic write. diskAvailable, when non-nil,
// replaces the stored capacity hint.
//
// Authentication depends only on id and credential, never on status, so a
// concurrent sweep demotion cannot cause a spurious rejection. Unknown id and
// credential mismatch both return [domain.ErrNotAuthorized] with no mutation.
func (s *Store) ApplyHeartbeat(ctx context.Context, id int64, credential string, diskAvailable *int64) error {
	now := time.Now().UTC()
	var res sql.Result
	var err error
	if diskAvailable != nil {
		res, err = s.db.ExecContext(ctx, `
UPDATE nodes
SET status = ?, last_seen = ?, disk_available = ?
WHERE id = ? AND credential = ?`, domain.NodeStatusActive, now, *diskAvailable, id, credential)
	} else {
		res, err = s.db.ExecContext(ctx, `
UPDATE nodes
SET status = ?, last_seen = ?
WHERE id = ? AND credential = ?`, domain.NodeStatusActive, now, id, credential)
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotAuthorized
	}
	return nil
}

// MarkStaleDown demotes every node that has not been seen since cutoff (or
// has never been seen) and is not already down. It is a single set-based
// statement: the staleness predicate is evaluated inside the same atomic
// write that demotes, so a heartbeat landing after cutoff was computed wins
// and leaves its node active. Returns the number of demoted nodes.
func (s *Store) MarkStaleDown(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE nodes
SET status = ?
WHERE (last_seen < ? OR last_seen IS NULL) AND status != ?`,
		domain.NodeStatusDown, cutoff.UTC(), domain.NodeStatusDown)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListNodes returns the full registry ordered by id. Credentials are never
// included in listing results.
func (s *Store) ListNodes(ctx context.Context) ([]domain.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, hostname, disk_available, status, last_seen
FROM nodes
ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Node
	for rows.Next() {
		var n domain.Node
		var lastSeen sql.NullTime
		if err := rows.Scan(&n.ID, &n.Name, &n.Hostname, &n.DiskAvailable, &n.Status, &lastSeen); err != nil {
			return nil, err
		}
		if lastSeen.Valid {
			t := lastSeen.Time
			n.LastSeen = &t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetNode returns a single node record including its credential. Internal
// use only; the credential must never leave the process.
func (s *Store) GetNode(ctx context.Context, id int64) (domain.Node, error) {
	var n domain.Node
	var lastSeen sql.NullTime
	err := s.db.QueryRowContext(ctx, `
SELECT id, name, hostname, disk_available, status, last_seen, credential
FROM nodes
WHERE id = ?`, id).Scan(&n.ID, &n.Name, &n.Hostname, &n.DiskAvailable, &n.Status, &lastSeen, &n.Credential)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Node{}, domain.ErrNodeNotFound
	}
	if err != nil {
		return domain.Node{}, err
	}
	if lastSeen.Valid {
		t := lastSeen.Time
		n.LastSeen = &t
	}
	return n, nil
}

// DeleteNode removes a node record. This is an administrative operation and
// intentionally requires no credential.
func (s *Store) DeleteNode(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNodeNotFound
	}
	return nil
}
