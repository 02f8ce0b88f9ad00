// Package httpapi exposes the chat service over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"chatconnect/internal/domain"
)

// LivenessText is served on GET /.
const LivenessText = "Servidor ChatConnect ativo e online!"

// Status is reported by GET /health.
type Status struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Provider   string `json:"provider"`
	FAQEntries int    `json:"faq_entries"`
	TreeLoaded bool   `json:"tree_loaded"`
}

// Options configures the router.
type Options struct {
	RequestTimeout time.Duration
	CORSOrigins    []string
	// Status fills the health payload; nil reports only liveness.
	Status func() Status
}

// NewRouter creates the API router with all routes configured.
func NewRouter(svc domain.ChatService, logger zerolog.Logger, opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog(logger))
	r.Use(recoverer(logger))
	r.Use(cors(opts.CORSOrigins))
	r.Use(chimiddleware.Timeout(opts.RequestTimeout))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(LivenessText))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		st := Status{Status: "healthy", Service: "chatconnect"}
		if opts.Status != nil {
			st = opts.Status()
			st.Status, st.Service = "healthy", "chatconnect"
		}
		writeJSON(w, http.StatusOK, st)
	})

	h := &chatHandler{svc: svc, logger: logger}
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.Chat)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeServerError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Erro no servidor."})
}

type errorBody struct {
	Error string `json:"error"`
}
