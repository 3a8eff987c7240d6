package middleware

import (
	"net/http"

	"github.com/google/uuid"

	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

const requestIDHeader = "X-Request-ID"

// RequestID injects a request id into the context so every log line of a
// request can be correlated. An id supplied by the caller is kept.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(wrap.WithRequestID(r.Context(), id)))
	})
}
