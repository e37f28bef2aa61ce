package manager

import (
	"context"

	"github.com/google/uuid"

	"github.com/openhms/hms/internal/auditor"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/model"
	"github.com/openhms/hms/internal/repo"
)

const doctorResource = "doctors"

type DoctorManager struct {
	repo    repo.Repo
	auditor *auditor.Auditor
}

func NewDoctorManager(r repo.Repo, hmsAuditor *auditor.Auditor) *DoctorManager {
	return &DoctorManager{repo: r, auditor: hmsAuditor}
}

// CreateDoctor creates the staff account and its doctor profile together.
func (m *DoctorManager) CreateDoctor(ctx context.Context, user *model.User, doctor *model.Doctor) error {
	user.Role = model.RoleDoctor
	user.IsActive = true

	err := user.Validate()
	if err != nil {
		return errs.Wrap(ErrValidatingDoctor, err)
	}

	err = m.repo.Transaction(ctx, func(ctx context.Context, r repo.Repo) error {
		err := r.Create(ctx, user)
		if err != nil {
			return err
		}

		doctor.UserID = user.ID

		err = doctor.Validate()
		if err != nil {
			return errs.Wrap(ErrValidatingDoctor, err)
		}

		return r.Create(ctx, doctor)
	})
	if err != nil {
		return errs.Wrap(ErrCreateDoctor, err)
	}

	user.Doctor = doctor

	m.auditor.RecordOrLog(ctx, auditor.Event{
		Action:     model.AuditCreate,
		Resource:   doctorResource,
		ResourceID: doctor.ID.String(),
		Details:    map[string]string{"userId": user.ID.String(), "licenseNumber": doctor.LicenseNumber},
	})

	return nil
}

func (m *DoctorManager) ListDoctors(ctx context.Context, page Page) ([]*model.Doctor, int, error) {
	var doctors []*model.Doctor

	count, err := m.repo.List(ctx, model.Doctor{}, &doctors, *page.query())
	if err != nil {
		return nil, 0, errs.Wrap(ErrListDoctors, err)
	}

	return doctors, count, nil
}

func doctorExists(ctx context.Context, r repo.Repo, id uuid.UUID) error {
	_, err := r.First(ctx, &model.Doctor{BaseModel: model.BaseModel{ID: id}}, *repo.NewQuery())

	return notFoundAs(err, ErrDoctorNotFound)
}
