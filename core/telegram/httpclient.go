package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/neuroteach/tutorbot/core/telegram/netutil"
)

const (
	apiDialTimeout     = 5 * time.Second
	apiTLSTimeout      = 5 * time.Second
	apiHeaderTimeout   = 5 * time.Second
	apiIdleConnTimeout = 30 * time.Second
	apiClientTimeout   = 30 * time.Second
	apiRetryAttempts   = 3
	apiRetryBaseDelay  = 2 * time.Second
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls:
// bounded timeouts on every phase plus transparent retries on transient
// network failures.
func BuildHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: apiDialTimeout, KeepAlive: 30 * time.Second}
	return &http.Client{
		Timeout: apiClientTimeout,
		Transport: &retryTransport{
			next: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       apiIdleConnTimeout,
				TLSHandshakeTimeout:   apiTLSTimeout,
				ResponseHeaderTimeout: apiHeaderTimeout,
				ExpectContinueTimeout: time.Second,
			},
			attempts:  apiRetryAttempts,
			baseDelay: apiRetryBaseDelay,
		},
	}
}

// retryTransport re-sends a request after transient network failures,
// with linear backoff between attempts.
type retryTransport struct {
	next      http.RoundTripper
	attempts  int
	baseDelay time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	var lastErr error
	for attempt := 0; attempt <= t.attempts; attempt++ {
		outgoing, err := t.prepare(req, attempt)
		if err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}

		resp, err := next.RoundTrip(outgoing)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !netutil.ShouldRetry(err) || attempt == t.attempts {
			break
		}
		if err := sleepCtx(req, t.baseDelay*time.Duration(attempt+1)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// prepare returns the request to send on the given attempt. Retries need a
// fresh body, which is only possible when GetBody is set.
func (t *retryTransport) prepare(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 {
		return req, nil
	}
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	} else if req.Body != nil {
		return nil, http.ErrBodyReadAfterClose
	}
	return clone, nil
}

func sleepCtx(req *http.Request, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}
