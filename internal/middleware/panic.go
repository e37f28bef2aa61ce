package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/openhms/hms/internal/api/write"
	"github.com/openhms/hms/internal/apierrors"
	"github.com/openhms/hms/internal/log"
)

var ErrHandlerPanic = errors.New("handler panicked")

// PanicRecoveryMiddleware turns a panicking handler into a 500 response.
// http.ErrAbortHandler keeps its meaning and is re-raised.
func PanicRecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				if rec == http.ErrAbortHandler { //nolint:errorlint,err113
					panic(rec)
				}

				ctx := r.Context()
				log.Error(ctx, "Panic Occurred", fmt.Errorf("%w: %v", ErrHandlerPanic, rec),
					slog.String("path", r.URL.Path),
					slog.String("stackTrace", string(debug.Stack())),
				)

				write.ErrorResponse(ctx, w, apierrors.InternalServerErrorMessage())
			}()

			next.ServeHTTP(w, r)
		})
	}
}
