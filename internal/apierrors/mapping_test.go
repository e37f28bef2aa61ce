package apierrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhms/hms/internal/apierrors"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/manager"
	"github.com/openhms/hms/internal/model"
	"github.com/openhms/hms/internal/repo"
	"github.com/openhms/hms/internal/tenant"
	hmscontext "github.com/openhms/hms/utils/context"
)

var ErrForced = errors.New("forced error")

func TestTransformToAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{
			name:   "UnmappedError",
			err:    ErrForced,
			code:   apierrors.InternalServerErr,
			status: http.StatusInternalServerError,
		},
		{
			name:   "NotFound",
			err:    errs.Wrap(manager.ErrGetPatient, repo.ErrNotFound),
			code:   apierrors.ResourceNotFound,
			status: http.StatusNotFound,
		},
		{
			name:   "DomainNotFoundBeatsGeneric",
			err:    errs.Wrap(manager.ErrPatientNotFound, repo.ErrNotFound),
			code:   "PATIENT_NOT_FOUND",
			status: http.StatusNotFound,
		},
		{
			name:   "Unique",
			err:    fmt.Errorf("%w: %w", manager.ErrCreatePatient, repo.ErrUniqueConstraint),
			code:   apierrors.UniqueError,
			status: http.StatusConflict,
		},
		{
			name:   "UnavailableWinsOverEverything",
			err:    errs.Wrap(manager.ErrCreatePatient, errs.Wrap(repo.ErrUniqueConstraint, repo.ErrServerUnavailable)),
			code:   apierrors.DatabaseUnavailable,
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "UnknownHospital",
			err:    errs.Wrapf(tenant.ErrUnknownHospital, "%d", 9),
			code:   apierrors.UnknownHospital,
			status: http.StatusBadRequest,
		},
		{
			name:   "RenameWithoutSlug",
			err:    errs.Wrap(manager.ErrUpdateHospital, errs.Wrap(repo.ErrTransaction, model.ErrEmptySlug)),
			code:   apierrors.ValidationErr,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := apierrors.TransformToAPIError(t.Context(), tt.err)
			require.NotNil(t, result)
			assert.Equal(t, tt.code, result.Code)
			assert.Equal(t, tt.status, result.Status)
		})
	}
}

func TestTransformToAPIErrorContext(t *testing.T) {
	ctx := hmscontext.InjectRequestID(t.Context())
	requestID, err := hmscontext.GetRequestID(ctx)
	require.NoError(t, err)

	result := apierrors.TransformToAPIError(ctx, errs.Wrap(manager.ErrValidatingPatient, model.ErrEmptyPatientName))
	assert.Equal(t, apierrors.ValidationErr, result.Code)
	assert.Equal(t, requestID, result.RequestID)
	assert.Contains(t, result.Context["reason"], model.ErrEmptyPatientName.Error())

	again := apierrors.TransformToAPIError(t.Context(), errs.Wrap(manager.ErrValidatingPatient, model.ErrEmptyPatientName))
	assert.Empty(t, again.RequestID)
}
