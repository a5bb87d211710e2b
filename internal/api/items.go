package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/inventaris/internal/inventory"
	"github.com/erazemk/inventaris/internal/model"
)

// ItemsHandler handles inventory item endpoints.
type ItemsHandler struct {
	Inventory *inventory.Service
}

// List handles GET /api/inventory.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Inventory.List(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/inventory/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Inventory.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/inventory.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Draft
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Inventory.Create(r.Context(), req)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	slog.Info("item created", "item_id", item.ID, "operator", operator(r))
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT /api/inventory/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.Patch
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Inventory.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	slog.Info("item updated", "item_id", item.ID, "operator", operator(r))
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/inventory/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Inventory.Delete(r.Context(), id); err != nil {
		serviceError(w, r, err)
		return
	}

	slog.Info("item deleted", "item_id", id, "operator", operator(r))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// QRPayload handles GET /api/inventory/{id}/qr-payload.
func (h *ItemsHandler) QRPayload(w http.ResponseWriter, r *http.Request) {
	payload, err := h.Inventory.QRPayload(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"payload": payload})
}

// Resolve handles GET /api/inventory/resolve?code=...
func (h *ItemsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		jsonError(w, http.StatusBadRequest, "code required")
		return
	}

	item, err := h.Inventory.Resolve(r.Context(), code)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Stats handles GET /api/stats.
func (h *ItemsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Inventory.Stats(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

func operator(r *http.Request) string {
	if claims := GetClaims(r.Context()); claims != nil {
		return claims.Operator
	}
	return ""
}
