package apierrors

import (
	"net/http"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/manager"
	"github.com/openhms/hms/internal/model"
)

var hospitals = []errs.Mapping[*APIError]{
	{
		Chain: []error{manager.ErrHospitalNotFound},
		Exposed: &APIError{
			Code:    "HOSPITAL_NOT_FOUND",
			Message: "Hospital does not exist",
			Status:  http.StatusNotFound,
		},
	},
	{
		Chain: []error{manager.ErrHospitalNotServed},
		Exposed: &APIError{
			Code:    "HOSPITAL_NOT_SERVED",
			Message: "Hospital is not served by this deployment",
			Status:  http.StatusBadRequest,
		},
	},
	{
		Chain: []error{manager.ErrValidatingHospital},
		Exposed: &APIError{
			Code:    ValidationErr,
			Message: "Hospital is not valid",
			Status:  http.StatusBadRequest,
		},
		Context: validationContext,
	},
	{
		Chain: []error{manager.ErrUpdateHospital, model.ErrEmptySlug},
		Exposed: &APIError{
			Code:    ValidationErr,
			Message: "Hospital name does not produce a slug",
			Status:  http.StatusBadRequest,
		},
	},
	{
		Chain: []error{manager.ErrListHospitals},
		Exposed: &APIError{
			Code:    "GET_HOSPITALS",
			Message: "Failed to get hospitals",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		Chain: []error{manager.ErrListAuditLogs},
		Exposed: &APIError{
			Code:    "GET_AUDIT_LOGS",
			Message: "Failed to get audit logs",
			Status:  http.StatusInternalServerError,
		},
	},
}

// validationContext exposes the innermost validation failure.
func validationContext(err error) map[string]any {
	return map[string]any{"reason": err.Error()}
}
