// Package api exposes a read-only HTTP surface over the kernel's Namespace
// plus a single guarded debug route that can invoke any syscall by name,
// including unrecognized ones — the "loose entry point" where ENOSYS is
// reachable, deliberately kept off the closed syscall surface.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/kernel"
	"github.com/nidhogg/cogkernel/internal/semanticindex"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	kernel *kernel.Kernel
	index  *semanticindex.Client // optional; nil disables /api/semantic_query
	logger *zap.Logger
}

// NewHandler creates a new API handler. index may be nil.
func NewHandler(k *kernel.Kernel, index *semanticindex.Client, logger *zap.Logger) *Handler {
	return &Handler{kernel: k, index: index, logger: logger}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)
		r.Get("/ps", h.listProcesses)
		r.Get("/open/*", h.openPath)
		r.Get("/semantic_query", h.semanticQuery)
		r.Post("/debug/syscall", h.debugSyscall)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listProcesses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.kernel.Ps())
}

func (h *Handler) openPath(w http.ResponseWriter, r *http.Request) {
	path := "/" + chi.URLParam(r, "*")
	handle := h.kernel.Open(path)
	if !handle.Found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": handle.Reason})
		return
	}
	writeJSON(w, http.StatusOK, handle.Value)
}

func (h *Handler) semanticQuery(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "semantic index not configured"})
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}
	topK := 5
	matches, err := h.index.Query(r.Context(), query, topK)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

type debugSyscallRequest struct {
	PID  int            `json:"pid"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// debugSyscall is the one place in the whole system where an unrecognized
// syscall name surfaces ENOSYS instead of being statically unreachable.
func (h *Handler) debugSyscall(w http.ResponseWriter, r *http.Request) {
	var req debugSyscallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	res := h.kernel.Dispatcher().DispatchByName(req.PID, req.Name, req.Args)
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
