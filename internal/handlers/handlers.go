package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/openhms/hms/internal/api/write"
	"github.com/openhms/hms/internal/apierrors"
	"github.com/openhms/hms/internal/constants"
	"github.com/openhms/hms/internal/log"
	"github.com/openhms/hms/internal/manager"
	"github.com/openhms/hms/utils/sanitise"
)

const (
	SkipParam          = "$skip"
	TopParam           = "$top"
	PatientIDParam     = "patientId"
	VisitedAfterParam  = "visitedAfter"
	VisitedBeforeParam = "visitedBefore"
)

var (
	ErrInvalidSkip = errors.New("$skip must be a non-negative integer")
	ErrInvalidTop  = errors.New("$top must be an integer between 1 and 100")
)

// Router is the part of a mux the API registers its routes on.
type Router interface {
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}

// API serves the hospital, clinical and audit resources.
type API struct {
	manager *manager.Manager
}

func New(m *manager.Manager) *API {
	return &API{manager: m}
}

// Register adds every route to mux. Patterns are relative to the mux base
// URL.
func (a *API) Register(mux Router) {
	mux.HandleFunc("GET /hospitals", a.ListHospitals)
	mux.HandleFunc("POST /hospitals", a.CreateHospital)
	mux.HandleFunc("GET /hospitals/{slug}", a.GetHospital)
	mux.HandleFunc("PATCH /hospitals/{id}", a.UpdateHospital)

	mux.HandleFunc("GET /patients", a.ListPatients)
	mux.HandleFunc("POST /patients", a.CreatePatient)
	mux.HandleFunc("GET /patients/{id}", a.GetPatient)

	mux.HandleFunc("GET /doctors", a.ListDoctors)
	mux.HandleFunc("POST /doctors", a.CreateDoctor)

	mux.HandleFunc("GET /medical-records", a.ListMedicalRecords)
	mux.HandleFunc("POST /medical-records", a.CreateMedicalRecord)

	mux.HandleFunc("GET /prescriptions", a.ListPrescriptions)
	mux.HandleFunc("POST /prescriptions", a.CreatePrescription)
	mux.HandleFunc("GET /prescriptions/{id}", a.GetPrescription)

	mux.HandleFunc("GET /medications", a.ListMedications)

	mux.HandleFunc("GET /audit-logs", a.ListAuditLogs)
}

// page reads $skip and $top. $top defaults to constants.DefaultTop and may
// not exceed constants.MaxTop.
func page(r *http.Request) (manager.Page, error) {
	p := manager.Page{Skip: constants.DefaultSkip, Top: constants.DefaultTop}
	query := r.URL.Query()

	if v := query.Get(SkipParam); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil || skip < 0 {
			return p, ErrInvalidSkip
		}

		p.Skip = skip
	}

	if v := query.Get(TopParam); v != "" {
		top, err := strconv.Atoi(v)
		if err != nil || top < 1 || top > constants.MaxTop {
			return p, ErrInvalidTop
		}

		p.Top = top
	}

	return p, nil
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err != nil {
		log.Warn(r.Context(), "Receiving request", log.ErrorAttr(err))
		write.ErrorResponse(r.Context(), w, apierrors.JSONDecodeErrorMessage())

		return false
	}

	_, err = sanitise.Stringlikes(v)
	if err != nil {
		log.Warn(r.Context(), "Sanitising request", log.ErrorAttr(err))
		write.ErrorResponse(r.Context(), w, apierrors.JSONDecodeErrorMessage())

		return false
	}

	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		write.ErrorResponse(r.Context(), w, apierrors.ParamsErrorMessage("Invalid format for parameter "+name))
		return uuid.Nil, false
	}

	return id, true
}

// patientFilter reads the optional patientId query parameter.
func patientFilter(w http.ResponseWriter, r *http.Request) (*uuid.UUID, bool) {
	v := r.URL.Query().Get(PatientIDParam)
	if v == "" {
		return nil, true
	}

	id, err := uuid.Parse(v)
	if err != nil {
		write.ErrorResponse(r.Context(), w, apierrors.ParamsErrorMessage("Invalid format for parameter "+PatientIDParam))
		return nil, false
	}

	return &id, true
}

// timeFilter reads an optional RFC 3339 timestamp parameter.
func timeFilter(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}

	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		write.ErrorResponse(r.Context(), w, apierrors.ParamsErrorMessage("Invalid format for parameter "+name))
		return nil, false
	}

	return &ts, true
}

func pageOrError(w http.ResponseWriter, r *http.Request) (manager.Page, bool) {
	p, err := page(r)
	if err != nil {
		write.ErrorResponse(r.Context(), w, apierrors.ParamsErrorMessage(err.Error()))
		return p, false
	}

	return p, true
}

func writeList[M any, T any](w http.ResponseWriter, r *http.Request, items []M, count int, toAPI func(M) T) {
	values := make([]T, 0, len(items))
	for _, item := range items {
		values = append(values, toAPI(item))
	}

	write.JSON(r.Context(), w, http.StatusOK, write.List[T]{Value: values, Count: count})
}
