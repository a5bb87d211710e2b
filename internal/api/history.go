package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/inventaris/internal/inventory"
)

// HistoryHandler serves the audit trail.
type HistoryHandler struct {
	Inventory *inventory.Service
}

// List handles GET /api/history. An optional limit query parameter caps
// the number of entries.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.Inventory.ListHistory(r.Context(), limit)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, entries)
}
