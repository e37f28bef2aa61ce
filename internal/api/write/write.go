package write

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/openhms/hms/internal/apierrors"
	"github.com/openhms/hms/internal/log"
	hmscontext "github.com/openhms/hms/utils/context"
)

// ErrorResponse writes an error response to the client and logs the error
func ErrorResponse(ctx context.Context, w http.ResponseWriter, apiErr *apierrors.APIError) {
	if apiErr.RequestID == "" {
		apiErr.RequestID, _ = hmscontext.GetRequestID(ctx)
	}

	JSON(ctx, w, apiErr.Status, apierrors.ErrorMessage{Error: apiErr})
}

// Error maps err to its exposed form and writes it.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	ErrorResponse(ctx, w, apierrors.TransformToAPIError(ctx, err))
}

func JSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		log.Error(ctx, "Failed to encode response", err)
	}
}

// List is the envelope of every list response.
type List[T any] struct {
	Value []T `json:"value"`
	Count int `json:"count"`
}
