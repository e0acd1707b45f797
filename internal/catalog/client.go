package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// SortPopularity is the discover order used when no search term is given
const SortPopularity = "popularity.desc"

// Config holds the catalog client configuration
type Config struct {
	// ProxyURL is the full URL of the metadata proxy, e.g. http://localhost:4000/proxy
	ProxyURL  string
	Timeout   time.Duration
	UserAgent string
	Retries   int
	// Transport overrides the HTTP transport (tests)
	Transport http.RoundTripper
}

// Client talks to the metadata proxy. It keeps no cache: every call hits the network.
type Client struct {
	http     *resty.Client
	proxyURL string
	logger   logrus.FieldLogger
}

// NewClient creates a new catalog client
func NewClient(cfg Config, logger logrus.FieldLogger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "lbmovies/1.0"
	}

	logger = logger.WithField("component", "catalog")

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetLogger(logger)
	if cfg.Transport != nil {
		client.SetTransport(cfg.Transport)
	}

	return &Client{
		http:     client,
		proxyURL: cfg.ProxyURL,
		logger:   logger,
	}
}

// Close releases the underlying HTTP client
func (c *Client) Close() error {
	return c.http.Close()
}

// FetchPage returns one page of a collection. An empty or blank query means
// discover mode sorted by popularity, anything else is a full-text search.
func (c *Client) FetchPage(ctx context.Context, kind Kind, query string, page int) (*CollectionPage, error) {
	if strings.TrimSpace(query) == "" {
		return c.Discover(ctx, kind, page, SortPopularity)
	}
	return c.Search(ctx, kind, query, page)
}

// Discover lists a collection in the given sort order
func (c *Client) Discover(ctx context.Context, kind Kind, page int, sortBy string) (*CollectionPage, error) {
	if err := validate(kind, page); err != nil {
		return nil, err
	}
	if sortBy == "" {
		sortBy = SortPopularity
	}

	params := map[string]string{
		"page":    strconv.Itoa(page),
		"sort_by": sortBy,
	}
	return c.fetchCollection(ctx, kind, "discover/"+kind.upstream(), params)
}

// Search runs a full-text search. The query is forwarded verbatim.
func (c *Client) Search(ctx context.Context, kind Kind, query string, page int) (*CollectionPage, error) {
	if err := validate(kind, page); err != nil {
		return nil, err
	}

	params := map[string]string{
		"page":  strconv.Itoa(page),
		"query": query,
	}
	return c.fetchCollection(ctx, kind, "search/"+kind.upstream(), params)
}

func (c *Client) fetchCollection(ctx context.Context, kind Kind, endpoint string, params map[string]string) (*CollectionPage, error) {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var raw rawPage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}

	page := raw.normalize(kind)
	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"page":     page.Page,
		"items":    len(page.Items),
	}).Debug("fetched collection page")

	return page, nil
}

// get performs a GET through the proxy and maps failures onto the error taxonomy
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("endpoint", endpoint).
		Get(c.proxyURL)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if !resp.IsSuccess() {
		return nil, upstreamError(resp.StatusCode(), resp.Status(), resp.Bytes())
	}

	return resp.Bytes(), nil
}

// upstreamError builds the typed error for a non-2xx proxy answer
func upstreamError(code int, status string, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	message := payload.Error
	if message == "" {
		message = strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	}
	if message == "" {
		message = http.StatusText(code)
	}

	if code == http.StatusInternalServerError && message == MissingCredentialMessage {
		return &ConfigError{Reason: message}
	}
	return &UpstreamError{Status: code, Message: message}
}

// MissingCredentialMessage is the proxy's error body when it has no API key
const MissingCredentialMessage = "API key not configured"

func validate(kind Kind, page int) error {
	if !kind.IsValid() {
		return fmt.Errorf("invalid kind %q", kind)
	}
	if page < 1 {
		return ErrInvalidPage
	}
	return nil
}
