package api

import (
	"context"
	"net/http"
	"time"

	"github.com/erazemk/inventaris/internal/audit"
	"github.com/erazemk/inventaris/internal/db"
	"github.com/erazemk/inventaris/internal/store"
)

// HealthHandler reports database reachability, the size of the audit trail
// and audit write failures.
type HealthHandler struct {
	DB    *db.DB
	Audit *audit.Recorder
}

// Check handles GET /api/health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]any{"status": "ok", "database": h.DB.Driver()}
	if err := h.DB.PingContext(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
	} else if n, err := store.CountHistory(ctx, h.DB); err == nil {
		body["historyEntries"] = n
	}
	if h.Audit != nil {
		body["auditFailures"] = h.Audit.Failures()
	}
	jsonResponse(w, status, body)
}
