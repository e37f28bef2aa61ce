package manager

import (
	"context"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/model"
	"github.com/openhms/hms/internal/repo"
)

// MedicationManager reads the medication catalogue seeded into every
// hospital schema.
type MedicationManager struct {
	repo repo.Repo
}

func NewMedicationManager(r repo.Repo) *MedicationManager {
	return &MedicationManager{repo: r}
}

func (m *MedicationManager) ListMedications(ctx context.Context, page Page) ([]*model.Medication, int, error) {
	var medications []*model.Medication

	query := page.query().Order(repo.OrderField{Field: repo.NameField, Direction: repo.Asc})

	count, err := m.repo.List(ctx, model.Medication{}, &medications, *query)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListMedications, err)
	}

	return medications, count, nil
}
