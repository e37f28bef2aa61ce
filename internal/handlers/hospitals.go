package handlers

import (
	"net/http"
	"strconv"

	"github.com/openhms/hms/internal/api/write"
	"github.com/openhms/hms/internal/apierrors"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/manager"
	"github.com/openhms/hms/internal/model"
	"github.com/openhms/hms/internal/tenant"
	"github.com/openhms/hms/utils/ptr"
)

func (a *API) ListHospitals(w http.ResponseWriter, r *http.Request) {
	p, ok := pageOrError(w, r)
	if !ok {
		return
	}

	hospitals, count, err := a.manager.Hospitals.ListHospitals(r.Context(), p)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	writeList(w, r, hospitals, count, hospitalToAPI)
}

func (a *API) GetHospital(w http.ResponseWriter, r *http.Request) {
	hospital, err := a.manager.Hospitals.GetHospitalBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	write.JSON(r.Context(), w, http.StatusOK, hospitalToAPI(hospital))
}

func (a *API) CreateHospital(w http.ResponseWriter, r *http.Request) {
	var body HospitalCreate
	if !decode(w, r, &body) {
		return
	}

	hospital := &model.Hospital{
		ID:       body.ID,
		Name:     body.Name,
		Address:  body.Address,
		Phone:    body.Phone,
		Email:    body.Email,
		IsActive: true,
	}

	err := a.manager.Hospitals.CreateHospital(r.Context(), hospital)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	write.JSON(r.Context(), w, http.StatusCreated, hospitalToAPI(hospital))
}

func (a *API) UpdateHospital(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		write.ErrorResponse(r.Context(), w, apierrors.ParamsErrorMessage("Invalid format for parameter id"))
		return
	}

	var body HospitalPatch
	if !decode(w, r, &body) {
		return
	}

	if ptr.Blank(body.Name) {
		write.Error(r.Context(), w, errs.Wrap(manager.ErrValidatingHospital, model.ErrEmptyHospitalName))
		return
	}

	patch := &model.Hospital{
		Name:    ptr.Value(body.Name),
		Address: ptr.Value(body.Address),
		Phone:   ptr.Value(body.Phone),
		Email:   ptr.Value(body.Email),
	}

	hospital, err := a.manager.Hospitals.UpdateHospital(r.Context(), tenant.ID(n), patch)
	if err != nil {
		write.Error(r.Context(), w, err)
		return
	}

	write.JSON(r.Context(), w, http.StatusOK, hospitalToAPI(hospital))
}
