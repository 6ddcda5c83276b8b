package middleware

import (
	"net/http"

	"github.com/google/uuid"

	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
)

const RequestIDHeader = "X-Request-ID"

// RequestID takes the request id from the header or generates a new one,
// stores it in the log context and echoes it back.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(wrap.WithRequestID(r.Context(), requestID)))
	})
}
