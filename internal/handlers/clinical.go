package handlers

import (
	"net/http"

	"github.com/openhms/hms/internal/api/write"
	"github.com/openhms/hms/internal/manager"
)

func (a *API) ListMedicalRecords(w http.ResponseWriter, r *http.Request) {
	p, ok := pageOrError(w, r)
	if !ok {
		return
	}

	filter := manager.MedicalRecordFilter{}

	filter.PatientID, ok = patientFilter(w, r)
	if !ok {
		return
	}

	filter.VisitedAfter, ok = timeFilter(w, r, VisitedAfterParam)
	if !ok {
		return
	}

	filter.VisitedBefore, ok = timeFilter(w, r, VisitedBeforeParam)
	if !ok {
		return
	}

	records, count, err := a.manager.MedicalRecords.ListMedicalRecords(r.Context(), filter, p)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	writeList(w, r, records, count, medicalRecordToAPI)
}

func (a *API) CreateMedicalRecord(w http.ResponseWriter, r *http.Request) {
	var body MedicalRecordCreate
	if !decode(w, r, &body) {
		return
	}

	record := body.toModel()

	err := a.manager.MedicalRecords.CreateMedicalRecord(r.Context(), record)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	write.JSON(r.Context(), w, http.StatusCreated, medicalRecordToAPI(record))
}

func (a *API) ListPrescriptions(w http.ResponseWriter, r *http.Request) {
	p, ok := pageOrError(w, r)
	if !ok {
		return
	}

	patientID, ok := patientFilter(w, r)
	if !ok {
		return
	}

	prescriptions, count, err := a.manager.Prescriptions.ListPrescriptions(r.Context(), patientID, p)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	writeList(w, r, prescriptions, count, prescriptionToAPI)
}

func (a *API) GetPrescription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	prescription, err := a.manager.Prescriptions.GetPrescription(r.Context(), id)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	write.JSON(r.Context(), w, http.StatusOK, prescriptionToAPI(prescription))
}

func (a *API) CreatePrescription(w http.ResponseWriter, r *http.Request) {
	var body PrescriptionCreate
	if !decode(w, r, &body) {
		return
	}

	prescription := body.toModel()

	err := a.manager.Prescriptions.CreatePrescription(r.Context(), prescription)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	write.JSON(r.Context(), w, http.StatusCreated, prescriptionToAPI(prescription))
}

func (a *API) ListMedications(w http.ResponseWriter, r *http.Request) {
	p, ok := pageOrError(w, r)
	if !ok {
		return
	}

	medications, count, err := a.manager.Medications.ListMedications(r.Context(), p)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	writeList(w, r, medications, count, medicationToAPI)
}

func (a *API) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	p, ok := pageOrError(w, r)
	if !ok {
		return
	}

	entries, count, err := a.manager.AuditLogs.ListAuditLogs(r.Context(), p)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	writeList(w, r, entries, count, auditLogToAPI)
}
