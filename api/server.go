/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logging (zerolog)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the front end
  5. Auth:       Session gate on every /api route except login

ROUTE GROUPS:
  /api/auth/*           Login, refresh, logout
  /api/inventory/*      Inventory CRUD and import
  /api/dashboard/*      Dashboard counters
  /api/sales/*          Sale recorder and sales stats
  /api/export/*         CSV / XLSX / PDF export and sample file
  /api/admin/*          Initialize, backup, restore, reset
  /*                    Static files (frontend)

STATIC FILE SERVING:
  Serves the built front end from web/dist/ when present.
  Falls back to index.html for client-side routing.

SEE ALSO:
  - handlers.go, files.go: Handler implementations
  - auth.go: Session gate
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/medstock/inventory-engine/logger"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", ConfirmHeader},
		ExposedHeaders:   []string{SessionHeader, "Content-Disposition"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Middleware)

			r.Post("/auth/refresh", h.Refresh)
			r.Post("/auth/logout", h.Logout)

			// Inventory routes
			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", h.ListInventory)
				r.Post("/", h.AddItem)
				r.Post("/import", h.ImportRows)
				r.Post("/import/xlsx", h.ImportSpreadsheet)
				r.Get("/{id}", h.GetItem)
				r.Put("/{id}", h.UpdateItem)
				r.Delete("/{id}", h.DeleteItem)
			})

			r.Get("/dashboard/stats", h.DashboardStats)

			// Sales routes
			r.Route("/sales", func(r chi.Router) {
				r.Get("/", h.ListSales)
				r.Post("/", h.RecordSale)
				r.Get("/stats", h.SalesStats)
			})

			// Export routes
			r.Route("/export", func(r chi.Router) {
				r.Get("/sample", h.Sample)
				r.Get("/{format}", h.Export)
			})

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Post("/initialize", h.Initialize)

				r.Group(func(r chi.Router) {
					r.Use(h.Auth.RequirePassword)
					r.Post("/backup", h.Backup)
					r.Post("/restore", h.Restore)
					r.Post("/reset", h.Reset)
				})
			})
		})
	})

	// Serve static files (front end)
	// First try ./web/dist (development), then next to the executable
	staticDir := "./web/dist"
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, filepath.Clean(r.URL.Path))

			// SPA routing: serve index.html for unknown paths
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Medical Inventory</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Medical Inventory API</h1>
<p>The frontend is not built. Log in with <code>POST /api/auth/login</code> and send the token as a Bearer header.</p>
<h2>API Endpoints</h2>
<ul>
<li>/api/inventory - Inventory items</li>
<li>/api/dashboard/stats - Dashboard counters</li>
<li>/api/sales - Sales</li>
<li>/api/export/csv, /api/export/xlsx, /api/export/pdf - Exports</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}

// requestLogger logs one line per request with status and latency.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			event := log.Info()
			if status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Msg("http request")
		})
	}
}
