// Package server implements the backend HTTP surface: the tool-call
// webhook, the document-store query/mutation endpoints and the live event
// channel.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voxrelay/voxctl/internal/metrics"
	"github.com/voxrelay/voxctl/internal/store"
)

// WebSearcher answers web_search calls.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Shopper answers search_shopping calls.
type Shopper interface {
	Shop(ctx context.Context, query string, count int) (string, error)
}

// TaskAgent answers complex_task calls.
type TaskAgent interface {
	Available() bool
	Run(ctx context.Context, request string) (string, error)
}

// Options carries the optional collaborators; nil fields degrade to
// unavailable-service responses, never to errors.
type Options struct {
	Secret string
	Web    WebSearcher
	Shop   Shopper
	Tasks  TaskAgent
}

// Server is the voxctl backend.
type Server struct {
	store  store.Store
	hub    *Hub
	secret string
	web    WebSearcher
	shop   Shopper
	tasks  TaskAgent
}

func New(st store.Store, opts Options) *Server {
	return &Server{
		store:  st,
		hub:    NewHub(),
		secret: opts.Secret,
		web:    opts.Web,
		shop:   opts.Shop,
		tasks:  opts.Tasks,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(durationMiddleware)
	r.HandleFunc("/vapi/toolHandler", s.handleToolCalls).Methods(http.MethodPost)
	r.HandleFunc("/api/query", s.handleFunction(queryFunctions)).Methods(http.MethodPost)
	r.HandleFunc("/api/mutation", s.handleFunction(mutationFunctions)).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.hub.Handle).Methods(http.MethodGet)
	r.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func durationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		metrics.RequestDuration.
			WithLabelValues(r.Method, r.URL.Path).
			Observe(time.Since(start).Seconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
