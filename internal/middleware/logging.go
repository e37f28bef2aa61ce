package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/openhms/hms/internal/log"
)

// LoggingMiddleware logs the start and end of each request, along with the duration and status code.
// Server errors are logged at warn level.
func LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := log.InjectRequest(r.Context(), r)
			r = r.WithContext(ctx)

			log.Info(ctx, "Received Request")

			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(lrw, r)

			attrs := []slog.Attr{
				slog.Int("HttpStatus", lrw.statusCode),
				slog.Int("Bytes", lrw.written),
				slog.Duration("Duration", time.Since(start)),
			}

			if lrw.statusCode >= http.StatusInternalServerError {
				log.Warn(ctx, "Request Completed", attrs...)
				return
			}

			log.Info(ctx, "Request Completed", attrs...)
		})
	}
}

// Custom ResponseWriter to capture status codes
type loggingResponseWriter struct {
	http.ResponseWriter

	statusCode int
	written    int
}

// WriteHeader captures the status code
func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.written += n

	return n, err
}
