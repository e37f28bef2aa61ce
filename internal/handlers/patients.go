package handlers

import (
	"net/http"

	"github.com/openhms/hms/internal/api/write"
	"github.com/openhms/hms/internal/model"
)

func (a *API) ListPatients(w http.ResponseWriter, r *http.Request) {
	p, ok := pageOrError(w, r)
	if !ok {
		return
	}

	patients, count, err := a.manager.Patients.ListPatients(r.Context(), p)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	writeList(w, r, patients, count, patientToAPI)
}

func (a *API) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	patient, err := a.manager.Patients.GetPatient(r.Context(), id)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	write.JSON(r.Context(), w, http.StatusOK, patientToAPI(patient))
}

func (a *API) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var body PatientCreate
	if !decode(w, r, &body) {
		return
	}

	patient := body.toModel()

	err := a.manager.Patients.CreatePatient(r.Context(), patient)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	write.JSON(r.Context(), w, http.StatusCreated, patientToAPI(patient))
}

func (a *API) ListDoctors(w http.ResponseWriter, r *http.Request) {
	p, ok := pageOrError(w, r)
	if !ok {
		return
	}

	doctors, count, err := a.manager.Doctors.ListDoctors(r.Context(), p)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	writeList(w, r, doctors, count, doctorToAPI)
}

func (a *API) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var body DoctorCreate
	if !decode(w, r, &body) {
		return
	}

	user := &model.User{Identity: model.Identity{Name: body.Name, Email: body.Email}}
	doctor := &model.Doctor{
		Specialization: body.Specialization,
		LicenseNumber:  body.LicenseNumber,
		Phone:          body.Phone,
	}

	err := a.manager.Doctors.CreateDoctor(r.Context(), user, doctor)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	write.JSON(r.Context(), w, http.StatusCreated, doctorToAPI(doctor))
}
