package apierrors

import (
	"net/http"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/manager"
)

var clinical = []errs.Mapping[*APIError]{
	{
		Chain:   []error{manager.ErrValidatingPatient},
		Exposed: validation("Patient is not valid"),
		Context: validationContext,
	},
	{
		Chain:   []error{manager.ErrValidatingDoctor},
		Exposed: validation("Doctor is not valid"),
		Context: validationContext,
	},
	{
		Chain:   []error{manager.ErrValidatingMedicalRecord},
		Exposed: validation("Medical record is not valid"),
		Context: validationContext,
	},
	{
		Chain:   []error{manager.ErrValidatingPrescription},
		Exposed: validation("Prescription is not valid"),
		Context: validationContext,
	},
	{
		Chain:   []error{manager.ErrPatientNotFound},
		Exposed: notFound("PATIENT_NOT_FOUND", "Patient does not exist"),
	},
	{
		Chain:   []error{manager.ErrDoctorNotFound},
		Exposed: notFound("DOCTOR_NOT_FOUND", "Doctor does not exist"),
	},
	{
		Chain:   []error{manager.ErrPrescriptionNotFound},
		Exposed: notFound("PRESCRIPTION_NOT_FOUND", "Prescription does not exist"),
	},
	{
		Chain:   []error{manager.ErrMedicationNotFound},
		Exposed: notFound("MEDICATION_NOT_FOUND", "Medication does not exist"),
	},
}

func validation(message string) *APIError {
	return &APIError{Code: ValidationErr, Message: message, Status: http.StatusBadRequest}
}

func notFound(code, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: http.StatusNotFound}
}
