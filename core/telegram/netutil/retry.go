// Package netutil classifies network failures seen while talking to the
// Telegram API.
package netutil

import (
	"errors"
	"net"
	"net/url"
)

const maxUnwrapDepth = 8

// ShouldRetry reports whether err looks like a transient network failure
// worth another attempt. Timeouts and dial errors qualify; anything that
// reached the server does not.
func ShouldRetry(err error) bool {
	return shouldRetry(err, 0)
}

func shouldRetry(err error, depth int) bool {
	if err == nil || depth > maxUnwrapDepth {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// url.Error wraps the real cause; keep unwrapping manually because
	// Timeout on the wrapper does not always reflect the inner error.
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
		return shouldRetry(urlErr.Err, depth+1)
	}

	return false
}
