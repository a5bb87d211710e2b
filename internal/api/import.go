package api

import (
	"log/slog"
	"mime"
	"net/http"

	"github.com/erazemk/inventaris/internal/importer"
)

// ImportHandler handles bulk imports.
type ImportHandler struct {
	Importer       *importer.Reconciler
	MaxUploadBytes int64
}

type importRequest struct {
	Items []importer.Row `json:"items"`
}

// Import handles POST /api/inventory/import. The body is either JSON
// {"items": [...]} with rows already decoded, or a multipart form with the
// spreadsheet in the "file" field.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	var rows []importer.Row
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
			jsonError(w, http.StatusBadRequest, "file too large or invalid form")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, http.StatusBadRequest, "file field required")
			return
		}
		defer file.Close()

		rows, err = importer.ReadRows(file, header.Filename)
		if err != nil {
			serviceError(w, r, err)
			return
		}
	} else {
		var req importRequest
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		rows = req.Items
	}

	res, err := h.Importer.Import(r.Context(), rows)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	slog.Info("import completed", "imported", res.ImportedCount, "skipped", res.Skipped,
		"failed", len(res.Failed), "operator", operator(r))
	jsonResponse(w, http.StatusOK, res)
}
