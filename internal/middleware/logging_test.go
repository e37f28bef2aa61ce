package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openhms/hms/internal/middleware"
	"github.com/openhms/hms/internal/testutils"
)

// TestLoggingMiddleware tests the logging middleware
func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{name: "success", status: http.StatusOK, level: `"level":"INFO"`},
		{name: "server error", status: http.StatusServiceUnavailable, level: `"level":"WARN"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, buf := testutils.ContextWithLogBuffer(t.Context())

			testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			})

			req := httptest.NewRequestWithContext(ctx, http.MethodGet, "/hms/v1/patients", nil)
			rec := httptest.NewRecorder()

			middleware.LoggingMiddleware()(testHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)

			logOutput := buf.String()

			for _, assertion := range []string{
				"Request Completed",
				"Received Request",
				fmt.Sprintf(`"HttpStatus":%d`, tt.status),
				`"Bytes":4`,
				`"path":"/hms/v1/patients"`,
				tt.level,
			} {
				assert.Contains(t, logOutput, assertion)
			}
		})
	}
}
