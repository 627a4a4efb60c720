// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by stages that call the
// model endpoint.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/corpus-harvest/pkg/types"
)

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 10 << 20

// NewClient returns an HTTP client whose requests are bounded by timeout.
// A zero timeout falls back to 60 s; model calls must never wait forever.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// ReadBody reads the response body up to maxBodyBytes and closes it.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return data, nil
}

// StatusKind classifies an HTTP response status into the failure taxonomy.
// 408 and 429 are the retryable statuses; 401/403 are credential problems;
// the rest of the 4xx range means the request itself is bad; 5xx and
// anything unexpected count as transient server trouble.
func StatusKind(code int) types.ErrorKind {
	switch {
	case code == http.StatusRequestTimeout:
		return types.KindTransientNetwork
	case code == http.StatusTooManyRequests:
		return types.KindRateLimit
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return types.KindAuth
	case code >= 400 && code < 500:
		return types.KindInvalidRequest
	default:
		return types.KindTransientNetwork
	}
}
