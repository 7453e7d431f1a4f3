package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a backend response is buffered.
const maxBodyBytes = 10 << 20

type Request struct {
	Method  string
	BaseURL string
	Path    string
	Query   url.Values
	Body    any           // JSON encoded when non-nil
	Timeout time.Duration // 0 means no deadline beyond ctx
}

// Response carries the backend's body exactly as received.
type Response struct {
	Status int
	Body   []byte
}

type Client struct {
	http *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{http: httpClient}
}

// Do issues req against the backend. Every failure is returned as *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	target, err := buildURL(req.BaseURL, req.Path, req.Query)
	if err != nil {
		return nil, &Error{Kind: KindUnexpected, Err: err}
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &Error{Kind: KindUnexpected, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindUnexpected, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}

	switch {
	case resp.StatusCode == http.StatusBadGateway || resp.StatusCode == http.StatusServiceUnavailable:
		return nil, &Error{Kind: KindUnavailable, Status: resp.StatusCode, Body: string(data)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		text := strings.TrimSpace(string(data))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{Kind: KindBackendError, Status: resp.StatusCode, Body: text}
	}

	if !json.Valid(data) {
		return nil, &Error{Kind: KindUnexpected, Err: fmt.Errorf("backend returned invalid JSON (status %d)", resp.StatusCode)}
	}

	return &Response{Status: resp.StatusCode, Body: data}, nil
}

func classifyTransport(ctx context.Context, err error) *Error {
	if ctx.Err() != nil {
		return &Error{Kind: KindTimeout, Err: ctx.Err()}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindConnectionFailed, Err: err}
}

func buildURL(base, path string, query url.Values) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + path)
	if err != nil {
		return "", fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid backend url %q", base)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}
