package api

import (
	"net/http"
	"time"

	"github.com/cityreports/miniapp/internal/users/application"
)

// debugResponse is the body of GET /api/debug.
type debugResponse struct {
	application.StoreInfo
	Service string `json:"service"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

// handleDebug reports where the store lives and what it holds.
func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, debugResponse{
		StoreInfo: s.users.Describe(r.Context()),
		Service:   "miniapp",
		Version:   s.version,
		Time:      time.Now().UTC().Format(time.RFC3339),
	})
}
