package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/amaumene/zoetrope/internal/config"
)

var (
	// ErrNotConfigured is returned by every call when no API key is set
	ErrNotConfigured = errors.New("tmdb: api key not configured")

	// ErrUnavailable is returned when the circuit breaker is open
	ErrUnavailable = errors.New("tmdb: service unavailable")
)

// StatusError is a non-2xx answer from TMDB
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// retryable reports whether the request may succeed if sent again
func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RequestObserver is notified after every HTTP round trip
type RequestObserver func(endpoint, outcome string, elapsed time.Duration)

// abandonedError marks a failure caused by the caller's context, not by TMDB
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

const (
	maxRetries      = 3
	breakerName     = "tmdb-api"
	posterSize      = "w500"
	maxErrorBodyLen = 512
)

// Client talks to the TMDB v3 API with rate limiting, retries, a circuit breaker and a response cache
type Client struct {
	apiKey         string
	baseURL        string
	imageBaseURL   string
	language       string
	httpClient     *http.Client
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker[[]byte]
	cache          *gocache.Cache
	initialBackoff time.Duration
	observer       RequestObserver
	logger         *logrus.Logger
}

// NewClient creates a new TMDB client. A missing API key is not an error:
// the client is still returned and every call fails with ErrNotConfigured.
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	c := &Client{
		apiKey:         cfg.TMDBAPIKey,
		baseURL:        strings.TrimRight(cfg.TMDBBaseURL, "/"),
		imageBaseURL:   strings.TrimRight(cfg.TMDBImageBaseURL, "/"),
		language:       cfg.TMDBLanguage,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		limiter:        rate.NewLimiter(rate.Limit(cfg.TMDBRequestsPerSecond), 1),
		initialBackoff: 500 * time.Millisecond,
		logger:         logger,
	}

	if cfg.SearchCacheTTL > 0 {
		c.cache = gocache.New(cfg.SearchCacheTTL, 2*cfg.SearchCacheTTL)
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Cancelled or timed out callers say nothing about TMDB's health
			var abandoned *abandonedError
			if errors.As(err, &abandoned) {
				return true
			}
			// 4xx answers mean TMDB is healthy and the request was wrong
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return !statusErr.retryable()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("TMDB circuit breaker state changed")
		},
	})

	return c
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// SetObserver installs a hook called after every HTTP round trip
func (c *Client) SetObserver(observer RequestObserver) {
	c.observer = observer
}

// PosterURL builds the full poster URL for a poster path
func (c *Client) PosterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	if !strings.HasPrefix(posterPath, "/") {
		posterPath = "/" + posterPath
	}
	return c.imageBaseURL + "/" + posterSize + posterPath
}

// get fetches path with params and decodes the JSON answer into result.
// Successful bodies are cached by full request URL.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	if params == nil {
		params = url.Values{}
	}
	if params.Get("language") == "" && c.language != "" {
		params.Set("language", c.language)
	}

	cacheKey := path + "?" + params.Encode()
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			c.logger.WithField("path", path).Debug("TMDB cache hit")
			return json.Unmarshal(cached.([]byte), result)
		}
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		body, err := c.fetchWithRetry(ctx, path, params)
		if err != nil && ctx.Err() != nil {
			return nil, &abandonedError{err: ctx.Err()}
		}
		return body, err
	})
	if err != nil {
		var abandoned *abandonedError
		if errors.As(err, &abandoned) {
			return abandoned.err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if c.cache != nil {
		c.cache.SetDefault(cacheKey, body)
	}
	return nil
}

// fetchWithRetry retries transport errors, 429 and 5xx with exponential backoff
func (c *Client) fetchWithRetry(ctx context.Context, path string, params url.Values) ([]byte, error) {
	var body []byte

	operation := func() error {
		var err error
		body, err = c.doRequest(ctx, path, params)
		if err == nil {
			return nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialBackoff
	policy.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"path": path,
			"wait": wait.String(),
		}).Warn("TMDB request failed, retrying")
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx), notify)
	return body, err
}

// doRequest performs a single rate-limited GET against the API
func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	bearer := strings.Contains(c.apiKey, ".")
	if !bearer {
		query.Set("api_key", c.apiKey)
	}

	fullURL := c.baseURL + path + "?" + query.Encode()
	c.logger.WithFields(logrus.Fields{
		"method": http.MethodGet,
		"path":   path,
	}).Debug("Making TMDB API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Accept", "application/json")
	if bearer {
		// v4 read access tokens are JWTs
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(path, "error", start)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Check status code
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.observe(path, fmt.Sprintf("%d", resp.StatusCode), start)
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(path, "error", start)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.observe(path, "ok", start)
	return body, nil
}

func (c *Client) observe(path, outcome string, start time.Time) {
	if c.observer != nil {
		c.observer(endpointLabel(path), outcome, time.Since(start))
	}
}

// endpointLabel collapses ids out of the path to keep label cardinality low
func endpointLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if p != "" && strings.Trim(p, "0123456789") == "" {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}
