package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/heliodyne/pulseview/codec"
	"github.com/heliodyne/pulseview/log"
	"github.com/heliodyne/pulseview/metrics"
	"github.com/heliodyne/pulseview/types"
)

// DefaultTimeout is the default per-request timeout for the HTTP client.
// Set to zero in HTTPConfig to disable; the core imposes no timeout itself.
const DefaultTimeout = 30 * time.Second

// Server endpoints. The endpoint shape is owned by the processing server.
const (
	blocksPath   = "/api/blocks"
	modifiedPath = "/api/modified"
)

// HTTPConfig configures the HTTP data client.
type HTTPConfig struct {
	// BaseURL is the processing server root (required).
	BaseURL string
	// Timeout is the per-request timeout (default 30s, negative disables).
	Timeout time.Duration
	// Logger is optional; nil disables logging.
	Logger *log.Logger
	// Collector is the optional metrics collector.
	Collector *metrics.Collector
}

// HTTPClient fetches blocks from a live processing server.
type HTTPClient struct {
	base      *url.URL
	client    *http.Client
	logger    *log.Logger
	collector *metrics.Collector
}

// NewHTTPClient creates an HTTP data client.
// Returns an error if the base URL is empty or invalid.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("remote: HTTP client requires a base URL")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: invalid base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		timeout = 0
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Nop()
	}

	return &HTTPClient{
		base:      base,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
		collector: cfg.Collector,
	}, nil
}

// Fetch implements Client. It performs one GET against the blocks endpoint
// and tags the returned bytes with the kind probed from the header.
func (c *HTTPClient) Fetch(ctx context.Context, req Request) (types.RawBlock, error) {
	target := c.blocksURL(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return types.RawBlock{}, &TransportError{Kind: ErrUnreachable, Op: "fetch", Target: target, Err: err}
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return types.RawBlock{}, &TransportError{
			Kind:   classifyDialError(err),
			Op:     "fetch",
			Target: target,
			Err:    err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return types.RawBlock{}, &TransportError{
			Kind:   ErrServerRejected,
			Op:     "fetch",
			Target: target,
			Status: resp.StatusCode,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.RawBlock{}, &TransportError{
			Kind:   classifyDialError(err),
			Op:     "fetch",
			Target: target,
			Err:    err,
		}
	}
	c.collector.AddBytesFetched(int64(len(data)))

	kind, err := codec.Kind(data)
	if err != nil {
		// A well-formed transport response with an unreadable header is a
		// decode problem, not a transport problem. Surface it as such.
		return types.RawBlock{}, err
	}

	c.logger.Debug("block fetched", map[string]any{
		"selector": req.Selector,
		"bytes":    len(data),
		"record":   string(kind.Record),
	})

	return types.RawBlock{Kind: kind, Bytes: data}, nil
}

// ModifiedTime implements Client. The server reports the dataset
// modification time as a JSON RFC 3339 string.
func (c *HTTPClient) ModifiedTime(ctx context.Context, selector string) (time.Time, error) {
	target := c.endpoint(modifiedPath, url.Values{"ds": {selector}})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return time.Time{}, &TransportError{Kind: ErrUnreachable, Op: "modified", Target: target, Err: err}
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return time.Time{}, &TransportError{
			Kind:   classifyDialError(err),
			Op:     "modified",
			Target: target,
			Err:    err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, &TransportError{
			Kind:   ErrServerRejected,
			Op:     "modified",
			Target: target,
			Status: resp.StatusCode,
		}
	}

	var stamp time.Time
	if err := json.NewDecoder(resp.Body).Decode(&stamp); err != nil {
		return time.Time{}, &TransportError{
			Kind:   ErrServerRejected,
			Op:     "modified",
			Target: target,
			Err:    err,
		}
	}
	return stamp, nil
}

func (c *HTTPClient) blocksURL(req Request) string {
	query := url.Values{
		"ds": {req.Selector},
	}
	if req.FromNs != 0 {
		query.Set("from", strconv.FormatInt(req.FromNs, 10))
	}
	if req.ToNs != 0 {
		query.Set("to", strconv.FormatInt(req.ToNs, 10))
	}
	if len(req.Channels) > 0 {
		query.Set("ch", channelList(req.Channels))
	}
	if req.Options.ConvertToKeV {
		query.Set("kev", "1")
	}
	if req.Options.DeadTimeNs != 0 {
		query.Set("dt", strconv.FormatInt(req.Options.DeadTimeNs, 10))
	}
	return c.endpoint(blocksPath, query)
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := c.base.JoinPath(path)
	u.RawQuery = query.Encode()
	return u.String()
}

var _ Client = (*HTTPClient)(nil)
