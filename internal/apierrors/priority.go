package apierrors

import (
	"net/http"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/repo"
	"github.com/openhms/hms/internal/tenant"
)

const (
	DatabaseUnavailable = "DATABASE_UNAVAILABLE"
	UnknownHospital     = "UNKNOWN_HOSPITAL"
	InvalidHospital     = "INVALID_HOSPITAL_ID"
)

var highPrio = []errs.Mapping[*APIError]{
	{
		Chain: []error{repo.ErrServerUnavailable},
		Exposed: &APIError{
			Code:    DatabaseUnavailable,
			Message: "The database serving this hospital is unavailable",
			Status:  http.StatusServiceUnavailable,
		},
	},
	{
		Chain: []error{tenant.ErrUnknownHospital},
		Exposed: &APIError{
			Code:    UnknownHospital,
			Message: "The requested hospital is not served",
			Status:  http.StatusBadRequest,
		},
	},
	{
		Chain: []error{tenant.ErrInvalidHospitalID},
		Exposed: &APIError{
			Code:    InvalidHospital,
			Message: "The hospital id is not valid",
			Status:  http.StatusBadRequest,
		},
	},
}
