package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/inventaris/internal/audit"
	"github.com/erazemk/inventaris/internal/auth"
	"github.com/erazemk/inventaris/internal/db"
	"github.com/erazemk/inventaris/internal/importer"
	"github.com/erazemk/inventaris/internal/inventory"
)

// Deps holds everything the API handlers need.
type Deps struct {
	DB        *db.DB
	Inventory *inventory.Service
	Importer  *importer.Reconciler
	Audit     *audit.Recorder
	JWTSecret string

	// BarcodeDir is served read-only under BarcodeURLPrefix.
	BarcodeDir       string
	BarcodeURLPrefix string
	MaxUploadBytes   int64
}

// NewRouter creates the HTTP router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	items := &ItemsHandler{Inventory: d.Inventory}
	imports := &ImportHandler{Importer: d.Importer, MaxUploadBytes: d.MaxUploadBytes}
	history := &HistoryHandler{Inventory: d.Inventory}
	health := &HealthHandler{DB: d.DB, Audit: d.Audit}
	authHandler := &AuthHandler{DB: d.DB}

	r.Get("/api/health", health.Check)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(d.JWTSecret, d.DB))

		r.Post("/api/auth/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(RequireScope(auth.ScopeRead))
			r.Get("/api/inventory", items.List)
			r.Get("/api/inventory/resolve", items.Resolve)
			r.Get("/api/inventory/{id}", items.Get)
			r.Get("/api/inventory/{id}/qr-payload", items.QRPayload)
			r.Get("/api/history", history.List)
			r.Get("/api/stats", items.Stats)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireScope(auth.ScopeWrite))
			r.Post("/api/inventory", items.Create)
			r.Post("/api/inventory/import", imports.Import)
			r.Put("/api/inventory/{id}", items.Update)
			r.Delete("/api/inventory/{id}", items.Delete)
		})
	})

	if d.BarcodeDir != "" {
		prefix := d.BarcodeURLPrefix
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(d.BarcodeDir)))
		r.Get(prefix+"*", files.ServeHTTP)
	}

	return r
}
