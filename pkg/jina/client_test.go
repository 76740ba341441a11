package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastClient(baseURL string) Client {
	return NewClient("test-key", WithSearchBaseURL(baseURL), WithRetry(3, time.Millisecond))
}

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	want := SearchResponse{
		Code: 200,
		Data: []SearchResult{
			{Title: "Maria Lopez - Owner - Corner Cafe | LinkedIn", URL: "https://www.linkedin.com/in/marialopez"},
			{Title: "Corner Cafe opens second location", URL: "https://www.austinnews.com/corner-cafe"},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "/Corner Cafe owner Austin", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(want) //nolint:errcheck
	}))
	defer srv.Close()

	got, err := fastClient(srv.URL).Search(context.Background(), "Corner Cafe owner Austin")
	require.NoError(t, err)
	require.Len(t, got.Data, 2)
	assert.Equal(t, want.Data[0].Title, got.Data[0].Title)
	assert.Equal(t, want.Data[1].URL, got.Data[1].URL)
}

func TestSearch_WithSiteFilter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "linkedin.com", r.URL.Query().Get("site"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{Code: 200, Data: []SearchResult{}}) //nolint:errcheck
	}))
	defer srv.Close()

	got, err := fastClient(srv.URL).Search(context.Background(), "corner cafe", WithSiteFilter("linkedin.com"))
	require.NoError(t, err)
	assert.Empty(t, got.Data)
}

func TestSearch_NoResults422(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	got, err := fastClient(srv.URL).Search(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, got.Code)
	assert.Empty(t, got.Data)
}

func TestSearch_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`forbidden`))
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSearch_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestSearch_RetryOn500(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(SearchResponse{ //nolint:errcheck
			Code: 200,
			Data: []SearchResult{{Title: "Result", URL: "https://example.com"}},
		})
	}))
	defer srv.Close()

	got, err := fastClient(srv.URL).Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, got.Data, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearch_RetryExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearch_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastClient(srv.URL).Search(ctx, "q")
	require.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient("k").(*httpClient)
	assert.Equal(t, defaultSearchBaseURL, c.searchBaseURL)
	assert.Equal(t, 3, c.maxAttempts)
	assert.Equal(t, 30*time.Second, c.http.Timeout)

	custom := &http.Client{Timeout: time.Second}
	c = NewClient("k", WithHTTPClient(custom), WithSearchBaseURL("")).(*httpClient)
	assert.Same(t, custom, c.http)
	assert.Equal(t, defaultSearchBaseURL, c.searchBaseURL)
}

func TestRetryableStatusCode(t *testing.T) {
	t.Parallel()

	for code, want := range map[int]bool{200: false, 404: false, 422: false, 429: true, 500: true, 502: true, 503: true} {
		assert.Equal(t, want, retryableStatusCode(code), "status %d", code)
	}
}
