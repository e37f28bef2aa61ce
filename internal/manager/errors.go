package manager

import (
	"errors"
)

var (
	ErrListHospitals      = errors.New("failed to list hospitals")
	ErrGetHospital        = errors.New("failed to get hospital")
	ErrCreateHospital     = errors.New("failed to create hospital")
	ErrUpdateHospital     = errors.New("failed to update hospital")
	ErrValidatingHospital = errors.New("hospital is not valid")
	ErrHospitalNotServed  = errors.New("hospital is not served by this deployment")
	ErrHospitalNotFound   = errors.New("hospital not found")

	ErrCreatePatient     = errors.New("failed to create patient")
	ErrGetPatient        = errors.New("failed to get patient")
	ErrListPatients      = errors.New("failed to list patients")
	ErrValidatingPatient = errors.New("patient is not valid")
	ErrPatientNotFound   = errors.New("patient not found")

	ErrCreateDoctor     = errors.New("failed to create doctor")
	ErrListDoctors      = errors.New("failed to list doctors")
	ErrValidatingDoctor = errors.New("doctor is not valid")
	ErrDoctorNotFound   = errors.New("doctor not found")

	ErrCreateMedicalRecord     = errors.New("failed to create medical record")
	ErrListMedicalRecords      = errors.New("failed to list medical records")
	ErrValidatingMedicalRecord = errors.New("medical record is not valid")

	ErrCreatePrescription     = errors.New("failed to create prescription")
	ErrGetPrescription        = errors.New("failed to get prescription")
	ErrListPrescriptions      = errors.New("failed to list prescriptions")
	ErrValidatingPrescription = errors.New("prescription is not valid")
	ErrPrescriptionNotFound   = errors.New("prescription not found")
	ErrMedicationNotFound     = errors.New("medication not found")

	ErrListMedications = errors.New("failed to list medications")
	ErrListAuditLogs   = errors.New("failed to list audit logs")
)
