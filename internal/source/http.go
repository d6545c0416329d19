package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/igusev/sitefind/internal/logger"
)

// HTTP fetches an index from a URL, retrying transient failures
type HTTP struct {
	URL    string
	client *retryablehttp.Client
}

// NewHTTP creates an HTTP source. timeout bounds each attempt.
func NewHTTP(url string, timeout time.Duration) *HTTP {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = debugLogger{}
	if timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}

	return &HTTP{URL: url, client: client}
}

// Fetch issues a GET and returns the body on 200 OK
func (h *HTTP) Fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch index: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch index: unexpected status %s", resp.Status)
	}

	return resp.Body, nil
}

func (h *HTTP) String() string {
	return h.URL
}

// debugLogger routes retryablehttp's leveled logs to logger.Debug
type debugLogger struct{}

func (debugLogger) Error(msg string, kv ...interface{}) { logger.Debug("http: %s %v", msg, kv) }
func (debugLogger) Info(msg string, kv ...interface{})  { logger.Debug("http: %s %v", msg, kv) }
func (debugLogger) Debug(msg string, kv ...interface{}) { logger.Debug("http: %s %v", msg, kv) }
func (debugLogger) Warn(msg string, kv ...interface{})  { logger.Debug("http: %s %v", msg, kv) }
