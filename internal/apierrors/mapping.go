package apierrors

import (
	"context"
	"slices"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/log"
	hmscontext "github.com/openhms/hms/utils/context"
)

var APIErrorMapper = errs.NewMapper(slices.Concat(
	hospitals,
	clinical,
	defaultMapper,
), highPrio)

// TransformToAPIError logs err and returns the error exposed for it, tagged
// with the request id.
func TransformToAPIError(ctx context.Context, err error) *APIError {
	exposed := APIErrorMapper.Transform(err)

	log.Error(ctx, "Request failed", err)

	c := *exposed
	c.RequestID, _ = hmscontext.GetRequestID(ctx)

	return &c
}
