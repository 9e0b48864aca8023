package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/baitline/baitline/pkg/httputil"
)

// HTTPSink POSTs dossiers as JSON to a collector endpoint. Uses the shared
// pooled client; per-dispatch deadlines come from the caller's context.
type HTTPSink struct {
	url    string
	apiKey string
	client *http.Client
}

// HTTPSinkOption configures an HTTPSink.
type HTTPSinkOption func(*HTTPSink)

// WithAPIKey attaches an x-api-key header to every delivery.
func WithAPIKey(key string) HTTPSinkOption {
	return func(s *HTTPSink) { s.apiKey = key }
}

// WithHTTPClient replaces the underlying client. Test hook.
func WithHTTPClient(c *http.Client) HTTPSinkOption {
	return func(s *HTTPSink) { s.client = c }
}

// NewHTTPSink creates a sink delivering to url.
func NewHTTPSink(url string, opts ...HTTPSinkOption) *HTTPSink {
	s := &HTTPSink{
		url:    url,
		client: httputil.Client(httputil.TierFast),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send implements Sink.
func (s *HTTPSink) Send(ctx context.Context, d *Dossier) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dossier: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("x-api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver dossier: %w", err)
	}
	defer httputil.DrainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector returned %d", resp.StatusCode)
	}
	return nil
}
