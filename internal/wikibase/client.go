// Package wikibase talks to a Wikibase installation: the MediaWiki action
// API for entity search and entity records, and the SPARQL endpoint for
// structured queries.
package wikibase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/logger"
	"github.com/ppiankov/wikitree/internal/metrics"
	"github.com/ppiankov/wikitree/internal/model"
	"github.com/ppiankov/wikitree/internal/worker"
	"go.uber.org/zap"
)

const maxRetries = 3

// retrySleepFunc is the wait between retries (injectable for tests)
var retrySleepFunc = sleepContext

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Client calls the MediaWiki API and the SPARQL endpoint
type Client struct {
	httpClient   *http.Client
	mediaWikiURL string
	sparqlURL    string
	entityURI    string
	userAgent    string
	maxBytes     int64
	queryLimit   int
	limiter      *worker.Limiter
	robots       *RobotsChecker
	logger       *zap.SugaredLogger
}

// NewClient creates a client for the configured endpoints. limiter may be
// nil to disable rate limiting.
func NewClient(cfg model.APIConfig, queryLimit int, limiter *worker.Limiter) (*Client, error) {
	httpClient, err := NewHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 10_000_000
	}

	c := &Client{
		httpClient:   httpClient,
		mediaWikiURL: cfg.MediaWikiURL,
		sparqlURL:    cfg.SparqlURL,
		entityURI:    cfg.EntityURI,
		userAgent:    cfg.UserAgent,
		maxBytes:     maxBytes,
		queryLimit:   queryLimit,
		limiter:      limiter,
		logger:       logger.ComponentLogger("wikibase"),
	}
	if cfg.RespectRobots {
		c.robots = NewRobotsChecker(httpClient, cfg.UserAgent)
	}
	return c, nil
}

// statusError is a non-2xx answer from an endpoint
type statusError struct {
	Code   int
	Status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// apiError is an error object returned by the MediaWiki API
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Info)
}

// getJSON fetches rawURL and decodes the JSON body into out, retrying
// transient failures with exponential backoff
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL, accept string, out interface{}) error {
	log := logger.FromContext(ctx, c.logger).With(logger.FieldOperation, endpoint)
	start := time.Now()

	var body []byte
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		body, err = c.get(ctx, rawURL, accept)
		if err == nil || !isRetryable(err) || ctx.Err() != nil {
			break
		}
		if attempt < maxRetries-1 {
			metrics.RecordAPIRequest(endpoint, "retry", 0)
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			log.Debugw("Retrying request",
				logger.FieldAttempt, attempt+1,
				logger.FieldError, err,
			)
			if sleepErr := retrySleepFunc(ctx, backoff); sleepErr != nil {
				err = errors.Wrapf(sleepErr, "retry after %v", err)
				break
			}
		}
	}

	if err != nil {
		metrics.RecordAPIRequest(endpoint, "error", time.Since(start))
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.RecordAPIRequest(endpoint, "error", time.Since(start))
		return errors.Wrap(err, "decode response")
	}

	metrics.RecordAPIRequest(endpoint, "ok", time.Since(start))
	log.Debugw("Request done", logger.FieldDurationMS, time.Since(start).Milliseconds())
	return nil
}

func (c *Client) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	if err := c.admit(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &statusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return body, nil
}

// admit applies robots.txt (when enabled) and the per-host rate limit
func (c *Client) admit(ctx context.Context, rawURL string) error {
	if c.robots != nil {
		allowed, delay, err := c.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return err
		}
		if !allowed {
			return errors.Newf("robots.txt disallows %s", rawURL)
		}
		if c.limiter != nil && delay > 0 {
			if host, err := url.Parse(rawURL); err == nil && c.limiter.SetCrawlDelay(host.Host, delay) {
				c.logger.Infow("Applying crawl delay", logger.FieldHost, host.Host, "delay", delay)
			}
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, rawURL); err != nil {
			return errors.Wrap(err, "rate limit")
		}
	}
	return nil
}

// isRetryable reports transient failures: 5xx, 429 and network errors
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || (se.Code >= 500 && se.Code < 600)
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}

func (c *Client) apiURL(params url.Values) string {
	params.Set("format", "json")
	params.Set("formatversion", "2")
	return c.mediaWikiURL + "?" + params.Encode()
}
