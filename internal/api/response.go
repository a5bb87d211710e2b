package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/inventaris/internal/importer"
	"github.com/erazemk/inventaris/internal/inventory"
	"github.com/erazemk/inventaris/internal/logging"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// serviceError maps an inventory or import error to a response. Storage
// failures are logged with their cause and reported without detail.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *inventory.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, inventory.ErrNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, importer.ErrNoRows):
		jsonError(w, http.StatusBadRequest, "no rows to import")
	case errors.Is(err, importer.ErrNoValidRows):
		jsonError(w, http.StatusBadRequest, "no valid rows found")
	case errors.Is(err, importer.ErrUnsupportedFormat):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, importer.ErrUnreadableFile):
		logging.FromContext(r.Context()).Warn("unreadable import file", "error", err)
		jsonError(w, http.StatusBadRequest, importer.ErrUnreadableFile.Error())
	default:
		logging.FromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
