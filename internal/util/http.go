package util

import (
	"net/http"
	"time"
)

// NewClient returns an HTTP client bounded by timeout for the whole
// exchange, body included.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
