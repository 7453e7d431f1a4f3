package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"news-gateway/internal/backend"
	"news-gateway/internal/config"
	"news-gateway/internal/metrics"

	"go.uber.org/zap"
)

// Doer is the outbound side of the gateway. *backend.Client implements it.
type Doer interface {
	Do(ctx context.Context, req backend.Request) (*backend.Response, error)
}

type Handler struct {
	cfg    *config.Config
	client Doer
	logger *zap.Logger
}

func New(cfg *config.Config, client Doer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// call is what a route forwards to the backend after preparing the inbound request.
type call struct {
	query url.Values
	body  any
}

// inputError is a client mistake, answered with 400 before any backend call.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

// Route describes one proxied endpoint.
type Route struct {
	Name        string
	Method      string
	Path        string
	BackendPath string
	Timeout     time.Duration

	// prepare validates the inbound request and builds the outbound call.
	// nil forwards nothing.
	prepare func(r *http.Request) (call, error)
	// fallback is the 503 payload when the backend is down or starting up.
	fallback func(be *backend.Error) any
	// failure is the 500 payload; nil uses {"error": ...}.
	failure func(be *backend.Error) any
}

// proxy is the single request path shared by every endpoint: prepare, forward
// with a deadline, then map the outcome onto a status and a JSON body.
func (h *Handler) proxy(rt Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c call
		if rt.prepare != nil {
			var err error
			if c, err = rt.prepare(r); err != nil {
				var ie *inputError
				if errors.As(err, &ie) {
					metrics.ProxyRequests.WithLabelValues(rt.Name, metrics.OutcomeInvalid).Inc()
					writeJSON(w, http.StatusBadRequest, errorBody{Error: ie.msg})
					return
				}
				h.fail(w, rt, backend.AsError(err))
				return
			}
		}

		baseURL := h.cfg.BackendBaseURL()
		log := h.logger.With(
			zap.String("route", rt.Name),
			zap.String("backend_url", baseURL+rt.BackendPath),
		)

		start := time.Now()
		resp, err := h.client.Do(r.Context(), backend.Request{
			Method:  rt.Method,
			BaseURL: baseURL,
			Path:    rt.BackendPath,
			Query:   c.query,
			Body:    c.body,
			Timeout: rt.Timeout,
		})
		elapsed := time.Since(start)
		metrics.BackendDuration.WithLabelValues(rt.Name).Observe(elapsed.Seconds())

		if err != nil {
			be := backend.AsError(err)
			log = log.With(
				zap.String("kind", be.Kind.String()),
				zap.Int("backend_status", be.Status),
				zap.Duration("duration", elapsed),
				zap.Error(be),
			)

			if be.Degradable() {
				log.Warn("backend unavailable, serving degraded response")
				metrics.ProxyRequests.WithLabelValues(rt.Name, metrics.OutcomeDegraded).Inc()
				writeJSON(w, http.StatusServiceUnavailable, rt.fallback(be))
				return
			}

			log.Error("backend call failed")
			h.fail(w, rt, be)
			return
		}

		log.Debug("proxied request",
			zap.Int("backend_status", resp.Status),
			zap.Duration("duration", elapsed),
		)
		metrics.ProxyRequests.WithLabelValues(rt.Name, metrics.OutcomeOK).Inc()
		writeRaw(w, http.StatusOK, resp.Body)
	}
}

func (h *Handler) fail(w http.ResponseWriter, rt Route, be *backend.Error) {
	metrics.ProxyRequests.WithLabelValues(rt.Name, metrics.OutcomeError).Inc()

	if rt.failure != nil {
		writeJSON(w, http.StatusInternalServerError, rt.failure(be))
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: be.Error()})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
