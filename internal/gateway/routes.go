package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"news-gateway/internal/backend"
	"news-gateway/internal/news"

	"go.uber.org/zap"
)

const (
	defaultHighlightsLimit = 50
	defaultHistoryLimit    = 20
	defaultArticlesLimit   = 100

	chatUnavailableAnswer = "Backend server is not available. Please ensure your backend is deployed and BACKEND_URL is set correctly."

	extractUnavailableMessage = "Backend server is unavailable. It may be spinning up, please wait 30-60 seconds and try again."
	extractFailedMessage      = "News extraction failed"
	extractStartingUp         = "Backend is starting up. Wait 30-60 seconds and retry."
	extractTimedOut           = "Backend did not respond before the deadline. It may still be warming up, retry shortly."
	extractConnectionFailed   = "Backend connection failed. Check BACKEND_URL and ensure backend is deployed."
)

// Routes returns the endpoint table. Each entry configures the shared proxy.
func (h *Handler) Routes() []Route {
	t := h.cfg.Timeouts

	return []Route{
		{
			Name:        "chat_ask",
			Method:      http.MethodPost,
			Path:        "/chat/ask",
			BackendPath: "/api/chat/ask",
			Timeout:     t.Chat,
			prepare:     prepareAsk,
			fallback: func(*backend.Error) any {
				return news.ChatResponse{
					Answer:          chatUnavailableAnswer,
					Sources:         []string{},
					RelatedArticles: []int64{},
				}
			},
		},
		{
			Name:        "chat_history",
			Method:      http.MethodGet,
			Path:        "/chat/history",
			BackendPath: "/api/chat/history",
			Timeout:     t.Highlights,
			prepare:     h.prepareLimited(defaultHistoryLimit, false),
			fallback:    func(*backend.Error) any { return []news.ChatHistoryEntry{} },
		},
		{
			Name:        "highlights_breaking",
			Method:      http.MethodGet,
			Path:        "/highlights/breaking",
			BackendPath: "/api/highlights/breaking",
			Timeout:     t.Highlights,
			fallback:    emptyHighlights,
		},
		{
			Name:        "highlights_categories",
			Method:      http.MethodGet,
			Path:        "/highlights/categories",
			BackendPath: "/api/highlights/categories",
			Timeout:     t.Categories,
			fallback:    func(*backend.Error) any { return news.CategoryCounts{} },
		},
		{
			Name:        "highlights",
			Method:      http.MethodGet,
			Path:        "/highlights",
			BackendPath: "/api/highlights/",
			Timeout:     t.Highlights,
			prepare:     h.prepareLimited(defaultHighlightsLimit, true),
			fallback:    emptyHighlights,
		},
		{
			Name:        "news_extract",
			Method:      http.MethodPost,
			Path:        "/news/extract",
			BackendPath: "/api/news/extract",
			Timeout:     t.Extract,
			prepare:     prepareExtract,
			fallback:    extractFallback,
			failure: func(be *backend.Error) any {
				return news.ExtractResponse{
					Message: extractFailedMessage,
					Error:   be.Error(),
				}
			},
		},
		{
			Name:        "news_articles",
			Method:      http.MethodGet,
			Path:        "/news/articles",
			BackendPath: "/api/news/articles",
			Timeout:     t.Highlights,
			prepare:     h.prepareLimited(defaultArticlesLimit, true),
			fallback:    func(*backend.Error) any { return []news.Article{} },
		},
	}
}

func emptyHighlights(*backend.Error) any {
	return []news.Highlight{}
}

func extractFallback(be *backend.Error) any {
	resp := news.ExtractResponse{Message: extractUnavailableMessage}
	switch be.Kind {
	case backend.KindUnavailable:
		resp.Error = extractStartingUp
	case backend.KindTimeout:
		resp.Error = extractTimedOut
	default:
		resp.Error = extractConnectionFailed
	}
	return resp
}

func prepareAsk(r *http.Request) (call, error) {
	var req news.ChatRequest
	if err := decodeBody(r, &req); err != nil {
		return call{}, err
	}
	if strings.TrimSpace(req.Question) == "" {
		return call{}, &inputError{msg: "Question is required"}
	}

	return call{body: news.ChatRequest{Question: req.Question, Category: req.Category}}, nil
}

func prepareExtract(r *http.Request) (call, error) {
	var req news.ExtractRequest
	if err := decodeBody(r, &req); err != nil {
		return call{}, err
	}
	if req.Categories == nil {
		req.Categories = append([]string(nil), news.DefaultCategories...)
	}

	return call{body: req}, nil
}

// prepareLimited forwards limit (with a default) and, when withCategory is
// set, an optional category filter.
func (h *Handler) prepareLimited(defaultLimit int, withCategory bool) func(r *http.Request) (call, error) {
	return func(r *http.Request) (call, error) {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(h.queryLimit(r, defaultLimit)))

		if withCategory {
			if category := r.URL.Query().Get("category"); category != "" {
				q.Set("category", category)
			}
		}

		return call{query: q}, nil
	}
}

func (h *Handler) queryLimit(r *http.Request, defaultValue int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultValue
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		h.logger.Warn("invalid query parameter, using default",
			zap.String("param", "limit"),
			zap.String("value", raw),
			zap.Int("default", defaultValue),
		)
		return defaultValue
	}
	return limit
}

// decodeBody reads an optional JSON object. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	default:
		return &inputError{msg: fmt.Sprintf("Invalid JSON body: %v", err)}
	}
}
