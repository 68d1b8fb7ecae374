package sibling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"DatasetCatalog/internal/apperr"
	"DatasetCatalog/internal/logger"
	"DatasetCatalog/internal/metrics"

	"golang.org/x/time/rate"
)

const maxResponseBytes = 32 << 20

// Envelope is one resource returned by a sibling service.
type Envelope struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes"`
}

// Filter scopes a lookup to an application and environment.
type Filter struct {
	App string
	Env string
}

// StatusError is a non-2xx answer from a sibling service.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Detail)
}

// Client talks to every sibling service through one gateway base URL.
// Timeouts are enforced by the underlying http.Client.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

type Option func(*Client)

// WithRateLimit caps outbound calls at perSecond; zero or less disables it.
func WithRateLimit(perSecond int64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), int(perSecond))
		}
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, opts...)
}

func NewWithHTTPClient(baseURL string, hc *http.Client, opts ...Option) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listDocument struct {
	Data []map[string]any `json:"data"`
}

type objectDocument struct {
	Data map[string]any `json:"data"`
}

// do performs one call; every failure comes back as an apperr Upstream
// error naming service.
func (c *Client) do(ctx context.Context, service, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.SiblingRequests.WithLabelValues(service, "throttled").Inc()
			return apperr.Upstream(service, err)
		}
	}

	start := time.Now()
	err := c.roundTrip(ctx, method, path, query, body, out)
	metrics.SiblingDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SiblingRequests.WithLabelValues(service, "error").Inc()
		logger.Warn("sibling_call_failed", map[string]any{
			"service": service,
			"path":    path,
			"error":   err.Error(),
		})
		return apperr.Upstream(service, err)
	}
	metrics.SiblingRequests.WithLabelValues(service, "ok").Inc()
	logger.Debug("sibling_call", map[string]any{
		"service":     service,
		"path":        path,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode, Detail: errorDetail(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

// errorDetail extracts the first detail of a {"errors":[...]} body.
func errorDetail(body []byte) string {
	var doc struct {
		Errors []struct {
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &doc); err == nil && len(doc.Errors) > 0 {
		return doc.Errors[0].Detail
	}
	return strings.TrimSpace(string(body))
}

func toEnvelope(item map[string]any) Envelope {
	e := Envelope{ID: str(item["id"]), Type: str(item["type"])}
	if attrs, ok := item["attributes"].(map[string]any); ok {
		e.Attributes = attrs
		return e
	}
	e.Attributes = make(map[string]any, len(item))
	for k, v := range item {
		if k == "id" || k == "type" {
			continue
		}
		e.Attributes[k] = v
	}
	return e
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// appendUnique adds id to ids unless already seen.
func appendUnique(ids []string, seen map[string]struct{}, id string) []string {
	if id == "" {
		return ids
	}
	if _, ok := seen[id]; ok {
		return ids
	}
	seen[id] = struct{}{}
	return append(ids, id)
}
