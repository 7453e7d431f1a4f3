package gateway

import (
	"fmt"
	"net/http"
	"time"

	"news-gateway/internal/backend"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Router registers every proxied route under /api plus the health, readiness
// and metrics endpoints.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.recoverer, h.requestLogger)

	api := r.PathPrefix("/api").Subrouter()
	for _, rt := range h.Routes() {
		handler := h.proxy(rt)
		api.HandleFunc(rt.Path, handler).Methods(rt.Method)
		api.HandleFunc(rt.Path+"/", handler).Methods(rt.Method)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.readiness).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})

	return r
}

// HTTPHandler is the router wrapped with CORS for the configured browser origins.
func (h *Handler) HTTPHandler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: h.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type"},
	})
	return c.Handler(h.Router())
}

// readiness reports whether the backend answers its health endpoint. The
// gateway itself keeps serving degraded data either way.
func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	_, err := h.client.Do(r.Context(), backend.Request{
		Method:  http.MethodGet,
		BaseURL: h.cfg.BackendBaseURL(),
		Path:    "/health",
		Timeout: h.cfg.Timeouts.Readiness,
	})
	if err != nil {
		be := backend.AsError(err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "degraded",
			"backend": be.Kind.String(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": "reachable",
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic while handling request",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
				)
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: fmt.Sprint(rec)})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
