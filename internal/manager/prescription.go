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

const prescriptionResource = "prescriptions"

type PrescriptionManager struct {
	repo    repo.Repo
	auditor *auditor.Auditor
}

func NewPrescriptionManager(r repo.Repo, hmsAuditor *auditor.Auditor) *PrescriptionManager {
	return &PrescriptionManager{repo: r, auditor: hmsAuditor}
}

// CreatePrescription stores a prescription and its items atomically. Every
// item must reference a medication of the hospital catalogue.
func (m *PrescriptionManager) CreatePrescription(ctx context.Context, prescription *model.Prescription) error {
	if prescription.Status == "" {
		prescription.Status = model.PrescriptionActive
	}

	if prescription.IssuedAt.IsZero() {
		prescription.IssuedAt = time.Now().UTC()
	}

	err := prescription.Validate()
	if err != nil {
		return errs.Wrap(ErrValidatingPrescription, err)
	}

	items := prescription.Items
	prescription.Items = nil

	err = m.repo.Transaction(ctx, func(ctx context.Context, r repo.Repo) error {
		err := patientExists(ctx, r, prescription.PatientID)
		if err != nil {
			return err
		}

		err = doctorExists(ctx, r, prescription.DoctorID)
		if err != nil {
			return err
		}

		err = r.Create(ctx, prescription)
		if err != nil {
			return err
		}

		for i := range items {
			_, err = r.First(ctx, &model.Medication{BaseModel: model.BaseModel{ID: items[i].MedicationID}}, *repo.NewQuery())
			err = notFoundAs(err, ErrMedicationNotFound)
			if err != nil {
				return err
			}

			items[i].PrescriptionID = prescription.ID

			err = r.Create(ctx, &items[i])
			if err != nil {
				return err
			}
		}

		return nil
	})

	prescription.Items = items

	if err != nil {
		return errs.Wrap(ErrCreatePrescription, err)
	}

	m.auditor.RecordOrLog(ctx, auditor.Event{
		Action:     model.AuditCreate,
		Resource:   prescriptionResource,
		ResourceID: prescription.ID.String(),
		Details: map[string]any{
			"patientId": prescription.PatientID.String(),
			"items":     len(items),
		},
	})

	return nil
}

// GetPrescription returns the prescription with its items.
func (m *PrescriptionManager) GetPrescription(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	prescription := &model.Prescription{BaseModel: model.BaseModel{ID: id}}

	_, err := m.repo.First(ctx, prescription, *repo.NewQuery())
	if err != nil {
		return nil, errs.Wrap(ErrGetPrescription, notFoundAs(err, ErrPrescriptionNotFound))
	}

	var items []model.PrescriptionItem

	_, err = m.repo.List(ctx, model.PrescriptionItem{}, &items,
		*whereEq(repo.NewQuery(), repo.PrescriptionIDField, id))
	if err != nil {
		return nil, errs.Wrap(ErrGetPrescription, err)
	}

	prescription.Items = items

	return prescription, nil
}

func (m *PrescriptionManager) ListPrescriptions(
	ctx context.Context,
	patientID *uuid.UUID,
	page Page,
) ([]*model.Prescription, int, error) {
	var prescriptions []*model.Prescription

	query := page.query().Order(repo.OrderField{Field: repo.IssuedAtField, Direction: repo.Desc})
	if patientID != nil {
		query = whereEq(query, repo.PatientIDField, *patientID)
	}

	count, err := m.repo.List(ctx, model.Prescription{}, &prescriptions, *query)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListPrescriptions, err)
	}

	return prescriptions, count, nil
}
