package plex

import (
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"plexmirror/pkg/config"
	errs "plexmirror/pkg/errors"
	"plexmirror/pkg/logger"
	"plexmirror/pkg/ratelimit"
	"plexmirror/pkg/retry"
)

// Client talks to a Plex Media Server's library API. Catalog requests are
// paced by a rate limiter and retried on transient failures; binary
// downloads stream through a separate HTTP client with a longer timeout and
// are neither paced nor retried.
type Client struct {
	httpClient     *http.Client
	downloadClient *http.Client
	headers        map[string]string
	baseURL        string
	token          string
	limiter        ratelimit.Limiter
	retrier        *retry.Retrier
	logger         logger.Logger
}

// NewClient creates a catalog client with default retry and pacing
// behavior. Use NewClientWithConfig when the full configuration is at hand.
func NewClient(baseURL, token string, timeout time.Duration, log logger.Logger) *Client {
	cfg := config.DefaultConfig()
	cfg.Plex.BaseURL = baseURL
	cfg.Plex.Token = token
	if timeout > 0 {
		cfg.Plex.RequestTimeout = timeout
	}

	return NewClientWithConfig(cfg, log)
}

// NewClientWithConfig creates a catalog client from the plex, retry, and
// rate limit sections of the configuration.
func NewClientWithConfig(cfg *config.Config, log logger.Logger) *Client {
	// Use default logger if none provided
	if log == nil {
		log = logger.GetLogger()
	}

	// Plex servers on home networks commonly run with self-signed
	// certificates, so certificate verification is configurable.
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.Plex.InsecureSkipVerify,
		},
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Plex.RequestTimeout,
			Transport: transport,
		},
		downloadClient: &http.Client{
			Timeout:   cfg.Plex.DownloadTimeout,
			Transport: transport,
		},
		headers: map[string]string{
			"Accept":                   "application/xml",
			"X-Plex-Product":           "plexmirror",
			"X-Plex-Client-Identifier": uuid.NewString(),
			TokenParam:                 cfg.Plex.Token,
		},
		baseURL: strings.TrimRight(cfg.Plex.BaseURL, "/"),
		token:   cfg.Plex.Token,
		limiter: newLimiter(&cfg.RateLimit),
		retrier: newRetrier(&cfg.Retry, log),
		logger:  log,
	}
}

// newLimiter builds the catalog request limiter. A burst size smaller than
// the per-minute rate shrinks the bucket and refills it proportionally
// faster, keeping the same average rate while capping bursts.
func newLimiter(cfg *config.RateLimitConfig) ratelimit.Limiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	if cfg.BurstSize > 0 && cfg.BurstSize < rpm {
		period := time.Duration(float64(time.Minute) * float64(cfg.BurstSize) / float64(rpm))
		return ratelimit.NewTokenBucket(cfg.BurstSize, period)
	}

	return ratelimit.NewTokenBucket(rpm, time.Minute)
}

// newRetrier builds the retrier applied to catalog requests.
func newRetrier(cfg *config.RetryConfig, log logger.Logger) *retry.Retrier {
	backoff := retry.DefaultExponentialBackoff()
	if cfg.InitialDelay > 0 {
		backoff.BaseDelay = cfg.InitialDelay
	}
	if cfg.MaxDelay > 0 {
		backoff.MaxDelay = cfg.MaxDelay
	}
	if cfg.Multiplier > 0 {
		backoff.Multiplier = cfg.Multiplier
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.MaxAttempts
	retryCfg.Backoff = backoff
	retryCfg.Logger = log

	return retry.NewRetrier(retryCfg)
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Sections fetches the server's library section listing.
func (c *Client) Sections() (*MediaContainer, error) {
	c.logger.Debug("fetching library sections")

	var container MediaContainer
	if err := c.GetXML(SectionsURL(c.baseURL, c.token), &container); err != nil {
		c.logger.ErrorWithFields("failed to fetch library sections", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	c.logger.DebugWithFields("fetched library sections", map[string]interface{}{
		"directories": len(container.Directories),
	})

	return &container, nil
}

// SectionItems fetches the top-level contents of a library section: its
// loose photos and its albums.
func (c *Client) SectionItems(key string) (*MediaContainer, error) {
	c.logger.DebugWithFields("fetching section items", map[string]interface{}{
		"section_key": key,
	})

	var container MediaContainer
	if err := c.GetXML(SectionItemsURL(c.baseURL, key, c.token), &container); err != nil {
		c.logger.ErrorWithFields("failed to fetch section items", map[string]interface{}{
			"section_key": key,
			"error":       err.Error(),
		})
		return nil, err
	}

	return &container, nil
}

// Children fetches an album's direct children: its photos and sub-albums.
// The key is the album Directory's key attribute.
func (c *Client) Children(key string) (*MediaContainer, error) {
	c.logger.DebugWithFields("fetching album children", map[string]interface{}{
		"album_key": key,
	})

	var container MediaContainer
	if err := c.GetXML(ChildrenURL(c.baseURL, key, c.token), &container); err != nil {
		c.logger.ErrorWithFields("failed to fetch album children", map[string]interface{}{
			"album_key": key,
			"error":     err.Error(),
		})
		return nil, err
	}

	return &container, nil
}

// DownloadURLFor returns the authenticated download URL for a part key.
// Task queues store the full URL so the transfer phase needs no catalog
// state beyond the client itself.
func (c *Client) DownloadURLFor(partKey string) string {
	return DownloadURL(c.baseURL, partKey, c.token)
}

// Download opens a streaming GET for a download URL. The caller owns the
// returned body and must close it. The reported size is the server's
// Content-Length and may be -1 when unknown.
func (c *Client) Download(rawURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return nil, 0, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	resp, err := c.doRequest(c.downloadClient, req)
	if err != nil {
		return nil, 0, err
	}

	if err := c.checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, 0, err
	}

	return resp.Body, resp.ContentLength, nil
}

// GetXML performs a catalog GET and decodes the XML response into target.
// The request is paced by the rate limiter and retried on transient
// failures.
func (c *Client) GetXML(url string, target interface{}) error {
	return c.retrier.Do(func() error {
		// Each attempt consumes a token, retries included.
		c.limiter.Wait()
		return c.getXML(url, target)
	})
}

// getXML performs a single catalog request attempt.
func (c *Client) getXML(url string, target interface{}) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	resp, err := c.doRequest(c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Check status code
	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	// Decode XML
	if err := xml.Unmarshal(body, target); err != nil {
		// Create a preview of the body for debugging
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse XML response", map[string]interface{}{
			"url":          RedactURL(url),
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse XML: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// doRequest performs an HTTP request with the configured headers. Logged
// URLs have the token redacted.
func (c *Client) doRequest(hc *http.Client, req *http.Request) (*http.Response, error) {
	// Set all headers
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	// Log the request
	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    RedactURL(req.URL.String()),
	})

	resp, err := hc.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      RedactURL(req.URL.String()),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	// Log successful response
	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      RedactURL(req.URL.String()),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// checkResponseStatus checks the HTTP response status and returns appropriate errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    RedactURL(resp.Request.URL.String()),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: "authentication required: check the Plex token",
			Code:    resp.StatusCode,
		}
	case http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    RedactURL(resp.Request.URL.String()),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    RedactURL(resp.Request.URL.String()),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    RedactURL(resp.Request.URL.String()),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	default:
		if resp.StatusCode >= 400 {
			c.logger.ErrorWithFields("unexpected API error", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    RedactURL(resp.Request.URL.String()),
			})
			return &errs.Error{
				Type:    errs.ErrorTypeUnknown,
				Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
				Code:    resp.StatusCode,
			}
		}
		return nil
	}
}
