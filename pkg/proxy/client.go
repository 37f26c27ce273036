package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultMaxBodySize caps how much of an upstream response body is
// buffered before being copied back to the original client.
const DefaultMaxBodySize = 10 * 1024 * 1024

// Response is an upstream HTTP response, buffered and ready to be
// copied back to the client verbatim (spec: "the core delegates
// entirely to the external HTTP proxy and returns its response
// untouched").
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
}

// Client is the proxy client contract the Proxy Decider calls into:
// callExternal(url, method, headers, body) -> Response. remoteAddr and
// host identify the original client and are stamped onto the outgoing
// request as X-Forwarded-For/X-Forwarded-Host.
type Client interface {
	CallExternal(ctx context.Context, url, method string, headers http.Header, body []byte, remoteAddr, host string) (*Response, error)
}

// HTTPClient is the default Client, backed by net/http.Client.
type HTTPClient struct {
	httpClient *http.Client
}

// NewHTTPClient builds an HTTPClient with the given request timeout.
// A zero timeout means no timeout beyond the caller's context.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{httpClient: &http.Client{Timeout: timeout}}
}

// CallExternal forwards a request to url and returns the upstream
// response, buffered up to DefaultMaxBodySize. Hop-by-hop headers are
// stripped before forwarding, and X-Forwarded-For/X-Forwarded-Host are
// set from the original client's remoteAddr/host so the upstream sees
// who really made the request.
func (c *HTTPClient) CallExternal(ctx context.Context, url, method string, headers http.Header, body []byte, remoteAddr, host string) (*Response, error) {
	var bodyReader io.Reader
	if len(body) > 0 {
		bodyReader = bytes.NewReader(body)
	}

	outReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("building proxied request: %w", err)
	}

	copyHeaders(outReq.Header, headers)
	removeHopByHopHeaders(outReq.Header)
	if remoteAddr != "" {
		outReq.Header.Set("X-Forwarded-For", remoteAddr)
	}
	if host != "" {
		outReq.Header.Set("X-Forwarded-Host", host)
	}

	resp, err := c.httpClient.Do(outReq)
	if err != nil {
		return nil, fmt.Errorf("calling upstream %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading upstream response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"TE",
	"Trailers",
	"Transfer-Encoding",
	"Upgrade",
}

func removeHopByHopHeaders(h http.Header) {
	for _, header := range hopByHopHeaders {
		h.Del(header)
	}
}

var _ Client = (*HTTPClient)(nil)
