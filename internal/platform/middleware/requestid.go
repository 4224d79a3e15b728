package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"vigil/pkg/requestcontext"
)

const requestIDHeader = "X-Request-Id"

// RequestID assigns every request a correlation ID, honoring one supplied by
// a trusted proxy, and echoes it back in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
