package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_PassesBodyThroughUnchanged(t *testing.T) {
	raw := `[{"sources":["A","B"],"authors":["X"],"ID_casing":1,"a":2}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/highlights/breaking", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, raw)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.Client()).Do(context.Background(), Request{
		Method:  http.MethodGet,
		BaseURL: srv.URL + "/",
		Path:    "/api/highlights/breaking",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, raw, string(resp.Body))
}

func TestDo_SendsQueryAndJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "why?", got["question"])

		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	_, err := NewClient(nil).Do(context.Background(), Request{
		Method:  http.MethodPost,
		BaseURL: srv.URL,
		Path:    "/api/chat/ask",
		Query:   url.Values{"limit": {"2"}},
		Body:    map[string]string{"question": "why?"},
	})
	require.NoError(t, err)
}

func TestDo_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(nil).Do(context.Background(), Request{BaseURL: base, Path: "/api/highlights/"})
	require.Error(t, err)

	be := AsError(err)
	assert.Equal(t, KindConnectionFailed, be.Kind)
	assert.True(t, be.Degradable())
}

func TestDo_StatusClassification(t *testing.T) {
	tests := []struct {
		status     int
		wantKind   Kind
		degradable bool
	}{
		{http.StatusBadGateway, KindUnavailable, true},
		{http.StatusServiceUnavailable, KindUnavailable, true},
		{http.StatusInternalServerError, KindBackendError, false},
		{http.StatusNotFound, KindBackendError, false},
		{http.StatusUnprocessableEntity, KindBackendError, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, "boom")
			}))
			defer srv.Close()

			_, err := NewClient(nil).Do(context.Background(), Request{BaseURL: srv.URL, Path: "/x"})
			be := AsError(err)

			assert.Equal(t, tt.wantKind, be.Kind)
			assert.Equal(t, tt.status, be.Status)
			assert.Equal(t, "boom", be.Body)
			assert.Equal(t, tt.degradable, be.Degradable())
		})
	}
}

func TestDo_BackendErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Extraction failed: boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(nil).Do(context.Background(), Request{BaseURL: srv.URL, Path: "/x"})
	require.Error(t, err)
	assert.Equal(t, `backend responded with status 500: {"detail":"Extraction failed: boom"}`, err.Error())
}

func TestDo_TimeoutCancelsInFlightCall(t *testing.T) {
	released := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(released)
	}))
	defer srv.Close()

	start := time.Now()
	_, err := NewClient(nil).Do(context.Background(), Request{
		BaseURL: srv.URL,
		Path:    "/api/chat/ask",
		Timeout: 50 * time.Millisecond,
	})
	elapsed := time.Since(start)

	be := AsError(err)
	assert.Equal(t, KindTimeout, be.Kind)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, elapsed, 2*time.Second)

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("backend request was not cancelled")
	}
}

func TestDo_CallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(nil).Do(ctx, Request{BaseURL: srv.URL, Path: "/x"})
	assert.Equal(t, KindTimeout, AsError(err).Kind)
}

func TestDo_InvalidJSONIsUnexpected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>hello</html>")
	}))
	defer srv.Close()

	_, err := NewClient(nil).Do(context.Background(), Request{BaseURL: srv.URL, Path: "/x"})
	be := AsError(err)
	assert.Equal(t, KindUnexpected, be.Kind)
	assert.False(t, be.Degradable())
}

func TestDo_InvalidBaseURL(t *testing.T) {
	_, err := NewClient(nil).Do(context.Background(), Request{BaseURL: "not a url", Path: "/x"})
	assert.Equal(t, KindUnexpected, AsError(err).Kind)
}

func TestAsError_ForeignError(t *testing.T) {
	be := AsError(errors.New("boom"))
	assert.Equal(t, KindUnexpected, be.Kind)
	assert.Equal(t, "boom", be.Error())
}
