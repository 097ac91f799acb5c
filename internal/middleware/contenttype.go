package middleware

import (
	"mime"
	"net/http"
	"strings"
)

// Media types accepted on request bodies
const (
	MediaTypeJSON = "application/json"
	MediaTypeCSV  = "text/csv"
)

// ContentType validates Content-Type headers for requests with bodies. Without arguments
// only JSON is accepted.
func ContentType(allowed ...string) func(http.Handler) http.Handler {
	if len(allowed) == 0 {
		allowed = []string{MediaTypeJSON}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only validate Content-Type for methods that typically have bodies
			if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
				// Bodyless actions such as /generate carry no content type
				if r.ContentLength == 0 && r.Header.Get("Content-Type") == "" {
					next.ServeHTTP(w, r)
					return
				}

				mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if err != nil {
					respondErrorJSON(w, r, http.StatusBadRequest, "Bad Request", "Content-Type header is required", nopLogger)
					return
				}

				ok := false
				for _, a := range allowed {
					if strings.EqualFold(mediaType, a) {
						ok = true
						break
					}
				}
				if !ok {
					respondErrorJSON(w, r, http.StatusUnsupportedMediaType, "Unsupported Media Type",
						"Content-Type must be one of: "+strings.Join(allowed, ", "), nopLogger)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
