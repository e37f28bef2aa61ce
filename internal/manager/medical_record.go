package manager

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openhms/hms/internal/auditor"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/model"
	"github.com/openhms/hms/internal/repo"
)

const medicalRecordResource = "medical_records"

type MedicalRecordManager struct {
	repo    repo.Repo
	auditor *auditor.Auditor
}

func NewMedicalRecordManager(r repo.Repo, hmsAuditor *auditor.Auditor) *MedicalRecordManager {
	return &MedicalRecordManager{repo: r, auditor: hmsAuditor}
}

// CreateMedicalRecord files a visit for an existing patient and doctor of the
// current hospital.
func (m *MedicalRecordManager) CreateMedicalRecord(ctx context.Context, record *model.MedicalRecord) error {
	if record.VisitDate.IsZero() {
		record.VisitDate = time.Now().UTC()
	}

	err := record.Validate()
	if err != nil {
		return errs.Wrap(ErrValidatingMedicalRecord, err)
	}

	err = m.repo.Transaction(ctx, func(ctx context.Context, r repo.Repo) error {
		err := patientExists(ctx, r, record.PatientID)
		if err != nil {
			return err
		}

		err = doctorExists(ctx, r, record.DoctorID)
		if err != nil {
			return err
		}

		return r.Create(ctx, record)
	})
	if err != nil {
		return errs.Wrap(ErrCreateMedicalRecord, err)
	}

	m.auditor.RecordOrLog(ctx, auditor.Event{
		Action:     model.AuditCreate,
		Resource:   medicalRecordResource,
		ResourceID: record.ID.String(),
		Details:    map[string]string{"patientId": record.PatientID.String()},
	})

	return nil
}

// MedicalRecordFilter narrows a listing. Nil fields do not filter; the visit
// bounds are exclusive.
type MedicalRecordFilter struct {
	PatientID     *uuid.UUID
	VisitedAfter  *time.Time
	VisitedBefore *time.Time
}

// ListMedicalRecords lists the records matching filter, newest visit first.
func (m *MedicalRecordManager) ListMedicalRecords(
	ctx context.Context,
	filter MedicalRecordFilter,
	page Page,
) ([]*model.MedicalRecord, int, error) {
	var records []*model.MedicalRecord

	query := page.query().Order(repo.OrderField{Field: repo.VisitDateField, Direction: repo.Desc})
	if filter.PatientID != nil {
		query = whereEq(query, repo.PatientIDField, *filter.PatientID)
	}

	key := repo.NewCompositeKey()
	if filter.VisitedAfter != nil {
		key = key.Where(repo.VisitDateField, filter.VisitedAfter.UTC(), repo.Gt)
	}

	if filter.VisitedBefore != nil {
		key = key.Where(repo.VisitDateField, filter.VisitedBefore.UTC(), repo.Lt)
	}

	if len(key.Conds) > 0 {
		query = query.Where(repo.NewCompositeKeyGroup(key))
	}

	count, err := m.repo.List(ctx, model.MedicalRecord{}, &records, *query)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListMedicalRecords, err)
	}

	return records, count, nil
}

func patientExists(ctx context.Context, r repo.Repo, id uuid.UUID) error {
	_, err := r.First(ctx, &model.Patient{BaseModel: model.BaseModel{ID: id}}, *repo.NewQuery())

	return notFoundAs(err, ErrPatientNotFound)
}
