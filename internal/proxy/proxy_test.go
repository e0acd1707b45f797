package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProxy(t *testing.T, cfg Config, upstream http.HandlerFunc) *Handler {
	t.Helper()
	if upstream != nil {
		server := httptest.NewServer(upstream)
		t.Cleanup(server.Close)
		cfg.BaseURL = server.URL + "/3"
	}
	logger, _ := logtest.NewNullLogger()
	return New(cfg, logger)
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	body := map[string]string{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
	}
	return rec, body
}

func TestProxyPreflight(t *testing.T) {
	h := newTestProxy(t, Config{}, nil)

	rec, _ := do(t, h, http.MethodOptions, "/proxy")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestProxyRejectsNonGet(t *testing.T) {
	h := newTestProxy(t, Config{APIKey: "k"}, nil)

	rec, body := do(t, h, http.MethodPost, "/proxy?endpoint=discover/movie")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", body["error"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestProxyMissingCredential(t *testing.T) {
	h := newTestProxy(t, Config{}, nil)

	rec, body := do(t, h, http.MethodGet, "/proxy?endpoint=discover/movie")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "API key not configured", body["error"])
}

func TestProxyMissingEndpoint(t *testing.T) {
	h := newTestProxy(t, Config{APIKey: "k"}, nil)

	rec, body := do(t, h, http.MethodGet, "/proxy?page=1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing endpoint parameter", body["error"])
}

func TestProxyRejectsUnsafeEndpoints(t *testing.T) {
	h := newTestProxy(t, Config{APIKey: "k"}, nil)

	for _, endpoint := range []string{"../admin", "/movie/1", "http://evil.example/x", "movie/1?x=1"} {
		rec, _ := do(t, h, http.MethodGet, "/proxy?endpoint="+url.QueryEscape(endpoint))
		assert.Equal(t, http.StatusBadRequest, rec.Code, endpoint)
	}
}

func TestProxyForwardsWithAPIKey(t *testing.T) {
	h := newTestProxy(t, Config{APIKey: "secret"}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/search/movie", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "secret", q.Get("api_key"))
		assert.Equal(t, "star wars", q.Get("query"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Empty(t, q.Get("endpoint"))
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":2,"results":[],"total_pages":9,"total_results":170}`))
	})

	rec, _ := do(t, h, http.MethodGet, "/proxy?endpoint=search/movie&query=star+wars&page=2&api_key=client")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"page":2,"results":[],"total_pages":9,"total_results":170}`, rec.Body.String())
}

func TestProxyForwardsWithBearerToken(t *testing.T) {
	h := newTestProxy(t, Config{ReadAccessToken: "v4token"}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer v4token", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("api_key"))
		assert.Equal(t, "credits,videos", r.URL.Query().Get("append_to_response"))
		_, _ = w.Write([]byte(`{"id":550}`))
	})

	rec, _ := do(t, h, http.MethodGet, "/proxy?endpoint=movie/550&append_to_response=credits,videos")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":550}`, rec.Body.String())
}

func TestProxyRelaysUpstreamStatus(t *testing.T) {
	h := newTestProxy(t, Config{APIKey: "bad"}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key"}`))
	})

	rec, body := do(t, h, http.MethodGet, "/proxy?endpoint=discover/tv")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TMDB API error: Unauthorized", body["error"])
}

func TestProxyNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	logger, _ := logtest.NewNullLogger()
	h := New(Config{APIKey: "k", BaseURL: base, Timeout: time.Second}, logger)

	rec, body := do(t, h, http.MethodGet, "/proxy?endpoint=discover/movie")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["error"])
	require.NotEmpty(t, body["message"])
}

func TestProxyRateLimitConfigured(t *testing.T) {
	calls := 0
	h := newTestProxy(t, Config{APIKey: "k", RequestsPerSecond: 1000}, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{}`))
	})

	for i := 0; i < 3; i++ {
		rec, _ := do(t, h, http.MethodGet, "/proxy?endpoint=discover/movie")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 3, calls)
}
