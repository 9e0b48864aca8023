// Package httputil provides shared HTTP clients with connection pooling
// and safe response handling for outbound collector traffic.
package httputil

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// MaxResponseSize bounds response body reads. Collector responses are tiny;
// anything larger is misbehavior.
const MaxResponseSize = 1 * 1024 * 1024 // 1MB

// Shared transport with connection pooling. Safe for concurrent use; reuses
// TCP connections across report dispatches.
var sharedTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          50,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

// TimeoutTier selects a client timeout class.
type TimeoutTier int

const (
	// TierFast for fire-and-forget report dispatch (5s).
	TierFast TimeoutTier = iota
	// TierMedium for everything else (30s).
	TierMedium
)

var timeoutDurations = map[TimeoutTier]time.Duration{
	TierFast:   5 * time.Second,
	TierMedium: 30 * time.Second,
}

var (
	clientFast   *http.Client
	clientMedium *http.Client
	clientOnce   sync.Once
)

func initClients() {
	clientFast = &http.Client{
		Timeout:   timeoutDurations[TierFast],
		Transport: sharedTransport,
	}
	clientMedium = &http.Client{
		Timeout:   timeoutDurations[TierMedium],
		Transport: sharedTransport,
	}
}

// Client returns the shared HTTP client for a timeout tier. Use these
// instead of constructing http.Client per request so the connection pool is
// actually shared.
func Client(tier TimeoutTier) *http.Client {
	clientOnce.Do(initClients)
	if tier == TierFast {
		return clientFast
	}
	return clientMedium
}

// ReadResponseBody reads a response body with a size limit.
func ReadResponseBody(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = MaxResponseSize
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// DrainAndClose drains and closes a response body so the underlying
// connection returns to the pool.
func DrainAndClose(body io.ReadCloser) {
	if body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxResponseSize))
		_ = body.Close()
	}
}
