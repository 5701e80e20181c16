package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Page)
	mux.HandleFunc("POST /app/key", h.SaveKey)
	mux.HandleFunc("POST /app/ask", h.Ask)
	mux.HandleFunc("POST /app/clear", h.Clear)
}
