package middleware

import (
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout is the default request timeout (30 seconds)
	DefaultRequestTimeout = 30 * time.Second
	// DefaultAIRequestTimeout leaves room for a web-search completion (90 seconds)
	DefaultAIRequestTimeout = 90 * time.Second
)

// timeoutBody is the JSON body written when a handler runs out of time
const timeoutBody = `{"success":false,"error":"Request Timeout","message":"The request took too long to complete"}`

// Timeout creates a middleware that enforces a timeout on request handlers. The handler
// context is cancelled when the deadline passes.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
