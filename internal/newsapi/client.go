package newsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"news-gateway/internal/config"
	"news-gateway/internal/news"
)

const (
	DefaultTimeout     = 90 * time.Second
	DefaultChatTimeout = 30 * time.Second

	localBackendAPI = "http://localhost:8000/api"
	localGatewayAPI = "http://localhost:8080/api"
)

// Endpoint is where the client sends requests: the gateway's /api, or the
// backend directly when a public API URL is configured.
type Endpoint struct {
	BaseURL string
	Direct  bool
}

// ResolveEndpoint mirrors the browser's choice: an explicit public API URL
// bypasses the gateway, otherwise the gateway is used. With neither set,
// development talks to a local backend.
func ResolveEndpoint(publicAPIURL, env, gatewayURL string) Endpoint {
	if v := strings.TrimRight(strings.TrimSpace(publicAPIURL), "/"); v != "" {
		return Endpoint{BaseURL: v, Direct: true}
	}
	if v := strings.TrimRight(strings.TrimSpace(gatewayURL), "/"); v != "" {
		return Endpoint{BaseURL: v + "/api"}
	}
	if strings.EqualFold(env, config.DevelopmentEnv) {
		return Endpoint{BaseURL: localBackendAPI, Direct: true}
	}
	return Endpoint{BaseURL: localGatewayAPI}
}

// HealthURL is the backend's /health in direct mode and the gateway's
// /readyz otherwise; both answer 200 only when the backend is up.
func (e Endpoint) HealthURL() string {
	root := config.ResolveBackendURL("", e.BaseURL)
	if e.Direct {
		return root + "/health"
	}
	return root + "/readyz"
}

// StatusError is a non-2xx answer. A 503 carrying a JSON body is a degraded
// answer: the decoded placeholder is still returned alongside it.
type StatusError struct {
	Status   int
	Body     string
	Degraded bool
}

func (e *StatusError) Error() string {
	if e.Degraded {
		return fmt.Sprintf("backend unavailable (%d), no data yet", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Body)
}

// IsDegraded reports whether err only signals "no data yet".
func IsDegraded(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Degraded
}

type Client struct {
	endpoint Endpoint
	http     *http.Client
	chatHTTP *http.Client
}

func NewClient(endpoint Endpoint, timeout, chatTimeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if chatTimeout <= 0 {
		chatTimeout = DefaultChatTimeout
	}

	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		chatHTTP: &http.Client{Timeout: chatTimeout},
	}
}

func (c *Client) Endpoint() Endpoint { return c.endpoint }

func (c *Client) Highlights(ctx context.Context, category string, limit int) ([]news.Highlight, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if category != "" {
		q.Set("category", category)
	}

	var out []news.Highlight
	err := c.doJSON(ctx, c.http, http.MethodGet, "/highlights/", q, nil, &out)
	return out, err
}

func (c *Client) Breaking(ctx context.Context) ([]news.Highlight, error) {
	var out []news.Highlight
	err := c.doJSON(ctx, c.http, http.MethodGet, "/highlights/breaking", nil, nil, &out)
	return out, err
}

func (c *Client) Categories(ctx context.Context) (news.CategoryCounts, error) {
	var out news.CategoryCounts
	err := c.doJSON(ctx, c.http, http.MethodGet, "/highlights/categories", nil, nil, &out)
	return out, err
}

func (c *Client) Ask(ctx context.Context, question, category string) (news.ChatResponse, error) {
	var out news.ChatResponse
	err := c.doJSON(ctx, c.chatHTTP, http.MethodPost, "/chat/ask", nil,
		news.ChatRequest{Question: question, Category: category}, &out)
	return out, err
}

func (c *Client) ChatHistory(ctx context.Context, limit int) ([]news.ChatHistoryEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out []news.ChatHistoryEntry
	err := c.doJSON(ctx, c.http, http.MethodGet, "/chat/history", q, nil, &out)
	return out, err
}

// Extract triggers a news extraction. nil categories means the default set.
func (c *Client) Extract(ctx context.Context, categories []string, forceRefresh bool) (news.ExtractResponse, error) {
	if categories == nil {
		categories = news.DefaultCategories
	}

	var out news.ExtractResponse
	err := c.doJSON(ctx, c.http, http.MethodPost, "/news/extract", nil,
		news.ExtractRequest{Categories: categories, ForceRefresh: forceRefresh}, &out)
	return out, err
}

func (c *Client) Articles(ctx context.Context, category string, limit int) ([]news.Article, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if category != "" {
		q.Set("category", category)
	}

	var out []news.Article
	err := c.doJSON(ctx, c.http, http.MethodGet, "/news/articles", q, nil, &out)
	return out, err
}

// Health returns nil when the health endpoint answers 2xx.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.HealthURL(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, hc *http.Client, method, path string, query url.Values, payload, result any) error {
	target := c.endpoint.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable && json.Unmarshal(data, result) == nil {
		return &StatusError{Status: resp.StatusCode, Body: string(data), Degraded: true}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
