package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// NetworkError wraps a transport-level failure (dial, TLS, timeout, broken
// stream) so callers can distinguish it from protocol problems.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Protocol-level failures: the endpoint answered but not in the expected shape.
var (
	ErrEmptyResponse     = errors.New("endpoint returned no choices")
	ErrMalformedResponse = errors.New("endpoint returned malformed JSON")
)

const apiErrorBodyLimit = 2048

// newAPIError builds an APIError from a non-2xx response, keeping a bounded
// slice of the body for diagnostics.
func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, apiErrorBodyLimit))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// IsRetryableAPIError reports whether the status code suggests trying again.
func IsRetryableAPIError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 502, 503, 504:
			return true
		}
	}
	return false
}

// IsRetryableError classifies an error as transient. Typed checks come
// first; the string match is a fallback for untyped errors out of
// third-party code.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if IsRetryableAPIError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "eof", "tls handshake", "no such host", "connection refused"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
