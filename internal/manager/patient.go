package manager

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/openhms/hms/internal/auditor"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/model"
	"github.com/openhms/hms/internal/repo"
)

const patientResource = "patients"

type PatientManager struct {
	repo    repo.Repo
	auditor *auditor.Auditor
}

func NewPatientManager(r repo.Repo, hmsAuditor *auditor.Auditor) *PatientManager {
	return &PatientManager{repo: r, auditor: hmsAuditor}
}

func (m *PatientManager) CreatePatient(ctx context.Context, patient *model.Patient) error {
	err := patient.Validate()
	if err != nil {
		return errs.Wrap(ErrValidatingPatient, err)
	}

	if patient.MedicalRecordNumber == "" {
		patient.MedicalRecordNumber = newMedicalRecordNumber()
	}

	err = m.repo.Create(ctx, patient)
	if err != nil {
		return errs.Wrap(ErrCreatePatient, err)
	}

	m.auditor.RecordOrLog(ctx, auditor.Event{
		Action:     model.AuditCreate,
		Resource:   patientResource,
		ResourceID: patient.ID.String(),
		Details:    map[string]string{"medicalRecordNumber": patient.MedicalRecordNumber},
	})

	return nil
}

func (m *PatientManager) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient := &model.Patient{BaseModel: model.BaseModel{ID: id}}

	_, err := m.repo.First(ctx, patient, *repo.NewQuery())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errs.Wrap(ErrPatientNotFound, err)
		}

		return nil, errs.Wrap(ErrGetPatient, err)
	}

	return patient, nil
}

func (m *PatientManager) ListPatients(ctx context.Context, page Page) ([]*model.Patient, int, error) {
	var patients []*model.Patient

	query := page.query().Order(
		repo.OrderField{Field: "last_name", Direction: repo.Asc},
		repo.OrderField{Field: "first_name", Direction: repo.Asc},
	)

	count, err := m.repo.List(ctx, model.Patient{}, &patients, *query)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListPatients, err)
	}

	return patients, count, nil
}

// newMedicalRecordNumber is used when the caller does not bring its own MRN.
func newMedicalRecordNumber() string {
	id := uuid.New()
	return "MRN-" + id.String()[:8]
}
