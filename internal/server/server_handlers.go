package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lunes-host/nodewatch/internal/auth"
	"github.com/lunes-host/nodewatch/internal/domain"
	"github.com/lunes-host/nodewatch/internal/netutil"
)

// Required fields are pointers so a missing field can be reported by name.
type registerRequest struct {
	Name          *string `json:"name"`
	Hostname      *string `json:"hostname"`
	DiskAvailable *int64  `json:"disk_available"`
}

// registerResponse carries the credential: the only moment it is ever
// revealed. A node that loses it must re-register.
type registerResponse struct {
	ID         int64  `json:"id"`
	Credential string `json:"credential"`
}

type heartbeatRequest struct {
	ID         *int64  `json:"id"`
	Credential *string `json:"credential"`
	DiskUsed   *int64  `json:"disk_used,omitempty"`
}

type ackResponse struct {
	OK bool `json:"ok"`
}

type nodeView struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Hostname      string     `json:"hostname"`
	DiskAvailable int64      `json:"disk_available"`
	Status        string     `json:"status"`
	LastSeen      *time.Time `json:"last_seen"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req registerRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if verr := validateRegisterRequest(req); verr != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), ErrorCode: errCodeValidation})
		return
	}
	hostname := netutil.NormalizeHost(*req.Hostname)

	credential, err := auth.GenerateCredential()
	if err != nil {
		s.log.Error("credential generation failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	node, err := s.store.CreateNode(ctx, *req.Name, hostname, *req.DiskAvailable, credential)
	if err != nil {
		s.log.Error("node registration failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.log.Info("node registered", "id", node.ID, "name", node.Name, "hostname", node.Hostname)
	writeJSON(w, http.StatusCreated, registerResponse{ID: node.ID, Credential: credential})
}

func validateRegisterRequest(req registerRequest) *domain.ValidationError {
	if req.Name == nil || *req.Name == "" {
		return &domain.ValidationError{Field: "name", Reason: "must be a non-empty string"}
	}
	if req.Hostname == nil || netutil.NormalizeHost(*req.Hostname) == "" {
		return &domain.ValidationError{Field: "hostname", Reason: "must be a non-empty string"}
	}
	if req.DiskAvailable == nil {
		return &domain.ValidationError{Field: "disk_available", Reason: "is required"}
	}
	if *req.DiskAvailable < 0 {
		return &domain.ValidationError{Field: "disk_available", Reason: "must be >= 0"}
	}
	return nil
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req heartbeatRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.ID == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid field id: is required", ErrorCode: errCodeValidation})
		return
	}
	if req.Credential == nil || *req.Credential == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid field credential: is required", ErrorCode: errCodeValidation})
		return
	}
	if req.DiskUsed != nil && *req.DiskUsed < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid field disk_used: must be >= 0", ErrorCode: errCodeValidation})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	err := s.store.ApplyHeartbeat(ctx, *req.ID, *req.Credential, req.DiskUsed)
	if errors.Is(err, domain.ErrNotAuthorized) {
		// Unknown id and credential mismatch are indistinguishable on
		// purpose: the response must not leak registry membership.
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authorized", ErrorCode: errCodeUnauthorized})
		return
	}
	if err != nil {
		s.log.Error("heartbeat update failed", "id", *req.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.log.Debug("heartbeat accepted", "id", *req.ID)
	writeJSON(w, http.StatusOK, ackResponse{OK: true})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	nodes, err := s.store.ListNodes(ctx)
	if err != nil {
		s.log.Error("node listing failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, nodeViews(nodes))
}

func nodeViews(nodes []domain.Node) []nodeView {
	views := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, nodeView{
			ID:            n.ID,
			Name:          n.Name,
			Hostname:      n.Hostname,
			DiskAvailable: n.DiskAvailable,
			Status:        n.Status,
			LastSeen:      n.LastSeen,
		})
	}
	return views
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body", ErrorCode: errCodeValidation})
		return false
	}
	return true
}
