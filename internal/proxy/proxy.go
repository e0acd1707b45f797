package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

// DefaultBaseURL is the upstream metadata API
const DefaultBaseURL = "https://api.themoviedb.org/3"

// Config holds proxy configuration
type Config struct {
	BaseURL string
	// APIKey is sent as the api_key query parameter
	APIKey string
	// ReadAccessToken, when set, is sent as a Bearer token instead of APIKey
	ReadAccessToken   string
	RequestsPerSecond int
	Timeout           time.Duration
}

// Handler forwards GET /proxy?endpoint=<path>&... to the metadata API with
// the server-held credential injected.
type Handler struct {
	client  *http.Client
	baseURL string
	apiKey  string
	token   string
	limiter ratelimit.Limiter
	logger  logrus.FieldLogger
}

// New creates a new proxy handler
func New(cfg Config, logger logrus.FieldLogger) *Handler {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limiter := ratelimit.NewUnlimited()
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.New(cfg.RequestsPerSecond)
	}

	return &Handler{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		token:   cfg.ReadAccessToken,
		limiter: limiter,
		logger:  logger.WithField("component", "proxy"),
	}
}

// Configured reports whether an upstream credential is present
func (h *Handler) Configured() bool {
	return h.apiKey != "" || h.token != ""
}

// ServeHTTP handles GET and OPTIONS /proxy
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Preflight
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	if !h.Configured() {
		h.logger.Error("upstream API key is not configured")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "API key not configured"})
		return
	}

	params := r.URL.Query()
	endpoint := params.Get("endpoint")
	if endpoint == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing endpoint parameter"})
		return
	}
	if !validEndpoint(endpoint) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid endpoint parameter"})
		return
	}
	params.Del("endpoint")

	resp, err := h.doRequest(r, endpoint, params)
	if err != nil {
		h.logger.WithField("endpoint", endpoint).WithError(err).Error("upstream request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Internal server error",
			"message": err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		h.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		}).Warn("upstream returned an error")
		writeJSON(w, resp.StatusCode, map[string]string{
			"error": "TMDB API error: " + statusText(resp),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.WithField("endpoint", endpoint).WithError(err).Warn("failed to relay upstream body")
	}
}

// doRequest performs the upstream GET with the credential injected
func (h *Handler) doRequest(r *http.Request, endpoint string, params url.Values) (*http.Response, error) {
	// The server credential always wins over a client-supplied one
	params.Del("api_key")
	if h.token == "" {
		params.Set("api_key", h.apiKey)
	}

	target := fmt.Sprintf("%s/%s", h.baseURL, endpoint)
	if encoded := params.Encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	h.limiter.Take()

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}

// validEndpoint accepts relative API paths only
func validEndpoint(endpoint string) bool {
	if strings.HasPrefix(endpoint, "/") || strings.Contains(endpoint, "..") || strings.Contains(endpoint, "://") {
		return false
	}
	return !strings.ContainsAny(endpoint, "?#\\")
}

// statusText mirrors the reason phrase of the upstream status line
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
