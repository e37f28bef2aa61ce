package middleware

import (
	"net/http"

	"github.com/google/uuid"

	hmscontext "github.com/openhms/hms/utils/context"
)

const RequestIDHeader = "X-Request-Id"

// InjectRequestID injects a RequestID into the context to be used by other middlewares
// and echoes it back to the caller.
func InjectRequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if id := r.Header.Get(RequestIDHeader); id != "" && uuid.Validate(id) == nil {
				ctx = hmscontext.SetRequestID(ctx, id)
			} else {
				ctx = hmscontext.InjectRequestID(ctx)
			}

			requestID, _ := hmscontext.GetRequestID(ctx)
			w.Header().Set(RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
