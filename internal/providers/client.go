package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxBody caps how much of an upstream response is read.
const maxBody = 8 << 20

// client is the shared HTTP plumbing of the adapters: a timeout-bound
// http.Client plus default headers applied to every request.
type client struct {
	http    *http.Client
	headers map[string]string
}

func newClient(hc *http.Client, timeout time.Duration, headers map[string]string) client {
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return client{http: hc, headers: headers}
}

// get performs a GET and returns the body and headers. Non-2xx responses
// become *HTTPError; headers are returned in both cases.
func (c client) get(ctx context.Context, url string, extra map[string]string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	return c.do(req, extra)
}

func (c client) do(req *http.Request, extra map[string]string) ([]byte, http.Header, error) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, resp.Header, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.Header, &HTTPError{StatusCode: resp.StatusCode, Message: snippet(body)}
	}
	return body, resp.Header, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
