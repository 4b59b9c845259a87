package httpclient

import (
	"net/http"
	"time"
)

// New builds the shared outbound HTTP client. Every external fetch goes
// through a client with an explicit timeout; mirror downloads can be large,
// so the timeout covers the whole body read.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
