package trail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	apperrors "studio-journal/backend/pkg/errors"
	"studio-journal/backend/pkg/logger"
)

// Endpoint names used in logs, metrics and FetchError
const (
	EndpointTrail    = "trail"
	EndpointGraph    = "graph"
	EndpointActivity = "activity"
	EndpointThreads  = "threads"
	EndpointSuggest  = "suggest_source"
	EndpointConnect  = "suggest_connection"
)

// Activity window limits, matching the remote service
const (
	DefaultActivityDays = 365
	MaxActivityDays     = 730
)

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 5 * time.Minute
	maxBodyBytes    = 4 << 20
)

// Client reads the remote research trail service.
//
// The Get*/Suggest* methods report failures as *errors.FetchError.
// The Fetch*/Submit* methods are what presentation code should call: they
// never fail, collapsing every error to nil or an empty result.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	cache      *responseCache
	metrics    *Metrics
	validate   *validator.Validate
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithCacheTTL sets the revalidation window; zero disables caching
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = newResponseCache(ttl) }
}

// WithMetrics records fetch outcomes
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithBreakerSettings overrides the circuit breaker configuration
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(c *Client) { c.breaker = gobreaker.NewCircuitBreaker(st) }
}

// NewClient creates a research trail client for baseURL (no trailing slash)
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      newResponseCache(defaultCacheTTL),
		validate:   validator.New(),
		logger:     logger.Named("trail"),
	}
	c.breaker = gobreaker.NewCircuitBreaker(DefaultBreakerSettings(c.logger))

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultBreakerSettings trips after repeated transport or 5xx failures so
// a dead service costs one fast rejection per read instead of a timeout.
func DefaultBreakerSettings(log *zap.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "research-trail",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			fe, ok := apperrors.AsFetchError(err)
			if !ok {
				return err == nil
			}
			// A 404 for an unknown slug says nothing about service health
			return fe.Kind == apperrors.FetchKindStatus && fe.StatusCode < 500
		},
	}
}

// ============================================================================
// Typed reads
// ============================================================================

// GetTrail fetches the research trail for one content slug
func (c *Client) GetTrail(ctx context.Context, slug string) (*Trail, error) {
	var t Trail
	path := "/api/v1/trail/" + url.PathEscape(slug) + "/"
	if err := c.getJSON(ctx, EndpointTrail, path, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetSourceGraph fetches the full source graph
func (c *Client) GetSourceGraph(ctx context.Context) (*SourceGraph, error) {
	var g SourceGraph
	if err := c.getJSON(ctx, EndpointGraph, "/api/v1/graph/", &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// SourceGraph lets the client stand in wherever a graph reader is expected
func (c *Client) SourceGraph(ctx context.Context) (*SourceGraph, error) {
	return c.GetSourceGraph(ctx)
}

// GetActivity fetches daily activity counts for the last days days
func (c *Client) GetActivity(ctx context.Context, days int) ([]ActivityDay, error) {
	var out []ActivityDay
	path := fmt.Sprintf("/api/v1/activity/?days=%d", ClampActivityDays(days))
	if err := c.getJSON(ctx, EndpointActivity, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetThreads fetches research threads with the given status
func (c *Client) GetThreads(ctx context.Context, status string) ([]ThreadSummary, error) {
	var out []ThreadSummary
	path := "/api/v1/threads/?status=" + url.QueryEscape(status)
	if err := c.getJSON(ctx, EndpointThreads, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SuggestSource posts a reader suggestion. Suggestions are never cached.
func (c *Client) SuggestSource(ctx context.Context, s SourceSuggestion) error {
	if err := c.validate.Struct(s); err != nil {
		return apperrors.NewBaseError(apperrors.ErrorTypeTrail, "invalid source suggestion", err)
	}

	return c.post(ctx, EndpointSuggest, "/api/v1/suggest/source/", s)
}

// SuggestConnection posts a reader's proposed link between two entries
func (c *Client) SuggestConnection(ctx context.Context, s ConnectionSuggestion) error {
	if err := c.validate.Struct(s); err != nil {
		return apperrors.NewBaseError(apperrors.ErrorTypeTrail, "invalid connection suggestion", err)
	}
	return c.post(ctx, EndpointConnect, "/api/v1/suggest/connection/", s)
}

// ClampActivityDays bounds the activity window to 1..MaxActivityDays
func ClampActivityDays(days int) int {
	switch {
	case days <= 0:
		return DefaultActivityDays
	case days > MaxActivityDays:
		return MaxActivityDays
	default:
		return days
	}
}

// ============================================================================
// Soft reads
// ============================================================================

// FetchTrail returns the trail for slug, or nil when it cannot be read
func (c *Client) FetchTrail(ctx context.Context, slug string) *Trail {
	t, err := c.GetTrail(ctx, slug)
	if err != nil {
		c.logSoftFailure(EndpointTrail, err, zap.String("slug", slug))
		return nil
	}
	return t
}

// FetchSourceGraph returns the source graph, or nil when it cannot be read
func (c *Client) FetchSourceGraph(ctx context.Context) *SourceGraph {
	g, err := c.GetSourceGraph(ctx)
	if err != nil {
		c.logSoftFailure(EndpointGraph, err)
		return nil
	}
	return g
}

// FetchActivity returns activity counts, or an empty slice on failure
func (c *Client) FetchActivity(ctx context.Context, days int) []ActivityDay {
	out, err := c.GetActivity(ctx, days)
	if err != nil {
		c.logSoftFailure(EndpointActivity, err, zap.Int("days", days))
		return []ActivityDay{}
	}
	if out == nil {
		return []ActivityDay{}
	}
	return out
}

// FetchActiveThreads returns active research threads, or an empty slice
func (c *Client) FetchActiveThreads(ctx context.Context) []ThreadSummary {
	out, err := c.GetThreads(ctx, "active")
	if err != nil {
		c.logSoftFailure(EndpointThreads, err)
		return []ThreadSummary{}
	}
	if out == nil {
		return []ThreadSummary{}
	}
	return out
}

// SubmitSourceSuggestion reports whether the suggestion was accepted
func (c *Client) SubmitSourceSuggestion(ctx context.Context, s SourceSuggestion) bool {
	if err := c.SuggestSource(ctx, s); err != nil {
		c.logSoftFailure(EndpointSuggest, err, zap.String("target_slug", s.TargetSlug))
		return false
	}
	return true
}

// SubmitConnectionSuggestion reports whether the suggestion was accepted
func (c *Client) SubmitConnectionSuggestion(ctx context.Context, s ConnectionSuggestion) bool {
	if err := c.SuggestConnection(ctx, s); err != nil {
		c.logSoftFailure(EndpointConnect, err,
			zap.String("from_slug", s.FromSlug),
			zap.String("to_slug", s.ToSlug),
		)
		return false
	}
	return true
}

func (c *Client) logSoftFailure(endpoint string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("endpoint", endpoint), zap.Error(err))
	c.logger.Warn("Research trail read failed, rendering nothing", fields...)
}

// ============================================================================
// Transport
// ============================================================================

func (c *Client) getJSON(ctx context.Context, endpoint, path string, out interface{}) error {
	if body, ok := c.cache.get(path); ok {
		c.metrics.observe(endpoint, outcomeCacheHit)
		return json.Unmarshal(body, out)
	}

	body, err := c.do(ctx, endpoint, http.MethodGet, path, nil)
	if err == nil {
		if jerr := json.Unmarshal(body, out); jerr != nil {
			err = apperrors.NewFetchError(apperrors.FetchKindDecode, endpoint, 0, jerr)
		}
	}
	c.record(endpoint, err)
	if err != nil {
		return err
	}

	c.cache.put(path, body)
	return nil
}

// post sends a write. Writes bypass the cache.
func (c *Client) post(ctx context.Context, endpoint, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperrors.NewFetchError(apperrors.FetchKindDecode, endpoint, 0, err)
	}

	_, err = c.do(ctx, endpoint, http.MethodPost, path, payload)
	c.record(endpoint, err)
	return err
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, payload []byte) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, apperrors.NewFetchError(apperrors.FetchKindNetwork, endpoint, 0, err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, apperrors.NewFetchError(apperrors.FetchKindNetwork, endpoint, 0, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, apperrors.NewFetchError(apperrors.FetchKindNetwork, endpoint, resp.StatusCode, err)
		}

		c.logger.Debug("Research trail request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("latency", time.Since(start)),
		)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, apperrors.NewFetchError(apperrors.FetchKindStatus, endpoint, resp.StatusCode, nil)
		}
		return body, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.NewFetchError(apperrors.FetchKindUnavailable, endpoint, 0, err)
		}
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) record(endpoint string, err error) {
	if err == nil {
		c.metrics.observe(endpoint, outcomeOK)
		return
	}
	if fe, ok := apperrors.AsFetchError(err); ok {
		c.metrics.observe(endpoint, string(fe.Kind))
		return
	}
	c.metrics.observe(endpoint, "invalid")
}
