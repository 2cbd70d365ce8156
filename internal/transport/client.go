// Package transport performs outbound calls to the remote mail-dispatch
// service with a defined fallback chain: direct, then (for read-only
// requests only) a CORS relay, with cold-start-aware classification for
// mutating submissions. The chain is an ordered strategy list evaluated by
// a small loop so new strategies can be inserted without touching callers.
package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jobreach/coldreach/internal/metrics"
)

// Path records which route a successful call took, for diagnostics.
type Path string

const (
	PathDirect  Path = "direct"
	PathRelayed Path = "relayed"
)

// Config holds client settings.
type Config struct {
	// BaseURL is the remote service root, e.g. https://mailer.example.com.
	BaseURL string
	// RelayURL is the CORS-relay prefix; the full target URL is appended
	// percent-encoded. Empty disables the relay fallback.
	RelayURL string
	// RestrictedOrigin marks an environment where direct calls are known
	// to be blocked; read-only requests then go relay-first to avoid a
	// guaranteed failed round trip.
	RestrictedOrigin bool

	Timeout      time.Duration // full request timeout
	ProbeTimeout time.Duration // shorter timeout for health probes
	SettleDelay  time.Duration // wait after a successful warm-up probe
}

func (c *Config) setDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = 10 * time.Second
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = time.Second
	}
}

// Client is the resilient request client.
type Client struct {
	cfg         Config
	httpClient  *http.Client
	probeClient *http.Client
	logger      *slog.Logger
}

// New creates a client. A nil logger discards attempt logs.
func New(cfg Config, logger *slog.Logger) *Client {
	cfg.setDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		probeClient: &http.Client{Timeout: cfg.ProbeTimeout},
		logger:      logger.With("component", "transport"),
	}
}

// BaseURL returns the configured remote service root.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

type request struct {
	method      string
	path        string
	body        []byte
	contentType string
	probe       bool // use the shorter probe timeout
	directFirst bool // diagnostic calls try direct first even when restricted
}

func (r *request) readOnly() bool {
	return r.method == http.MethodGet || r.method == http.MethodHead
}

// Call performs a request following the dispatch policy and returns the
// response body. Failures are reported as *Error.
func (c *Client) Call(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, error) {
	data, _, err := c.do(ctx, &request{method: method, path: path, body: body, contentType: contentType})
	return data, err
}

// Probe performs a read-only diagnostic call, always attempting the direct
// path first, and reports which path succeeded.
func (c *Client) Probe(ctx context.Context, path string) ([]byte, Path, error) {
	return c.do(ctx, &request{method: http.MethodGet, path: path, probe: true, directFirst: true})
}

// WarmUp issues the read-only health probe before a mutating submission.
// ready decides whether the probe body indicates the service accepts work.
// A failed or negative probe fails fast with a cold-start error; after a
// positive probe the client waits the settle interval, since a service may
// report ready slightly before it can accept connections.
func (c *Client) WarmUp(ctx context.Context, healthPath string, ready func([]byte) bool) error {
	body, path, err := c.do(ctx, &request{method: http.MethodGet, path: healthPath, probe: true})
	if err != nil {
		return &Error{Kind: KindColdStart, Path: healthPath, Err: err}
	}
	if ready != nil && !ready(body) {
		return &Error{Kind: KindColdStart, Path: healthPath}
	}

	c.logger.Debug("warm-up probe succeeded", "via", path, "settle", c.cfg.SettleDelay)
	t := time.NewTimer(c.cfg.SettleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}
	return nil
}

// do evaluates the strategy plan for the request in order. An HTTP-level
// failure means the service answered, so no further strategy is tried.
func (c *Client) do(ctx context.Context, req *request) ([]byte, Path, error) {
	var lastErr error
	var lastPath Path

	for _, s := range c.planFor(req) {
		body, err := s.attempt(ctx, c, req)
		countAttempt(s.path, err)
		if err == nil {
			return body, s.path, nil
		}
		lastErr = err
		lastPath = s.path

		var terr *Error
		if errors.As(err, &terr) && terr.Kind == KindHTTPError {
			return nil, s.path, err
		}
		c.logger.Warn("request attempt failed",
			"via", s.path, "method", req.method, "path", req.path, "error", err)
	}

	return nil, lastPath, lastErr
}

func (c *Client) send(ctx context.Context, client *http.Client, method, url string, req *request) ([]byte, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{Kind: KindHTTPError, Status: resp.StatusCode, Path: req.path, Body: data}
	}
	return data, nil
}

func (c *Client) clientFor(req *request) *http.Client {
	if req.probe {
		return c.probeClient
	}
	return c.httpClient
}

func countAttempt(path Path, err error) {
	m := metrics.Get()
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.DispatchAttemptsTotal.WithLabelValues(string(path), outcome).Inc()
}
