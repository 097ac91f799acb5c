package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/benvon/interview-tracker/internal/request"
)

// maxRequestIDLength bounds client-supplied request ids
const maxRequestIDLength = 128

// RequestID attaches a request id to the context and echoes it in the response. A
// well-formed client-supplied X-Request-ID is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(request.HeaderRequestID))
		if id == "" || len(id) > maxRequestIDLength || strings.ContainsAny(id, "\r\n") {
			id = uuid.NewString()
		}
		w.Header().Set(request.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(request.WithRequestID(r.Context(), id)))
	})
}
