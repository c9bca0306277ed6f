package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/logger"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream"
)

// ErrNoEndpoint is returned when the HTTP transport has no URL to post to
var ErrNoEndpoint = errors.New("no stream endpoint configured")

const (
	defaultReadBuffer = 4096
	maxErrorBody      = 4096
)

// HTTPTransport posts the request to an agent endpoint and forwards the
// response body as it arrives. Each read is delivered as one chunk, so chunk
// boundaries are wherever the network put them.
type HTTPTransport struct {
	endpoint   string
	client     *http.Client
	readBuffer int
	headers    http.Header
	log        *logger.ComponentLogger
}

// HTTPOption configures an HTTPTransport
type HTTPOption func(*HTTPTransport)

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

// WithReadBuffer sets the largest chunk delivered per read
func WithReadBuffer(n int) HTTPOption {
	return func(t *HTTPTransport) {
		if n > 0 {
			t.readBuffer = n
		}
	}
}

// WithTimeout bounds a whole exchange. Zero means no bound.
func WithTimeout(d time.Duration) HTTPOption {
	return func(t *HTTPTransport) {
		t.client.Timeout = d
	}
}

// WithHeader adds a header to every request
func WithHeader(key, value string) HTTPOption {
	return func(t *HTTPTransport) {
		t.headers.Add(key, value)
	}
}

// NewHTTPTransport creates a transport posting to endpoint
func NewHTTPTransport(endpoint string, opts ...HTTPOption) (*HTTPTransport, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, ErrNoEndpoint
	}

	t := &HTTPTransport{
		endpoint:   endpoint,
		client:     &http.Client{},
		readBuffer: defaultReadBuffer,
		headers:    make(http.Header),
		log:        logger.WithComponent("http_transport"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Endpoint returns the URL requests are posted to
func (t *HTTPTransport) Endpoint() string {
	return t.endpoint
}

// Stream implements Transport
func (t *HTTPTransport) Stream(ctx context.Context, req chat.Request, h stream.Handler) error {
	op := "POST " + t.endpoint

	body, err := json.Marshal(req)
	if err != nil {
		return t.abort(h, stream.WrapTransportError(fmt.Errorf("failed to encode request: %w", err), op))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return t.abort(h, stream.WrapTransportError(err, op))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")
	for key, values := range t.headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	t.log.Debug("Opening stream", "endpoint", t.endpoint, "messages", len(req.Messages))
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return t.abort(h, stream.WrapTransportError(err, op))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return t.abort(h, &stream.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       errorDetail(raw),
		})
	}

	buf := make([]byte, t.readBuffer)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if err := h.OnChunk(string(buf[:n])); err != nil {
				return t.abort(h, err)
			}
		}
		if errors.Is(readErr, io.EOF) {
			t.log.Debug("Stream closed by server", "endpoint", t.endpoint)
			return h.OnComplete("")
		}
		if readErr != nil {
			return t.abort(h, stream.WrapTransportError(readErr, "read "+t.endpoint))
		}
	}
}

func (t *HTTPTransport) abort(h stream.Handler, err error) error {
	t.log.Warn("Stream failed", "endpoint", t.endpoint, "error", err)
	h.OnError(err)
	return err
}

// errorDetail pulls the message out of a JSON error body, falling back to
// the trimmed body text
func errorDetail(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "error", "detail", "message"} {
			if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
				return r.Str
			}
		}
	}
	return strings.TrimSpace(string(body))
}
