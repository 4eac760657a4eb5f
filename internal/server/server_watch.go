package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const watchWriteTimeout = 10 * time.Second

// handleWatch streams the node listing over a websocket on a fixed period.
// It is a read-only view for operator dashboards; the credential never
// appears in the pushed records.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	// Drain client frames so control messages are processed and closes are
	// noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.cfg.WatchPushInterval)
	defer ticker.Stop()

	for {
		if !s.pushNodeListing(r, conn) {
			return
		}
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) pushNodeListing(r *http.Request, conn *websocket.Conn) bool {
	ctx, cancel := s.requestContext(r)
	nodes, err := s.store.ListNodes(ctx)
	cancel()
	if err != nil {
		s.log.Error("node listing failed during watch push", "err", err)
		return false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
	if err := conn.WriteJSON(nodeViews(nodes)); err != nil {
		return false
	}
	return true
}
