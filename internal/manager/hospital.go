package manager

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/openhms/hms/internal/auditor"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/log"
	"github.com/openhms/hms/internal/model"
	"github.com/openhms/hms/internal/repo"
	"github.com/openhms/hms/internal/tenant"
)

const hospitalResource = "hospitals"

// HospitalManager maintains the hospital directory in the central database.
// Directory rows never create schemas; those come from the synchroniser.
type HospitalManager struct {
	repo    repo.Repo
	catalog *tenant.Catalog
	auditor *auditor.Auditor
}

func NewHospitalManager(r repo.Repo, catalog *tenant.Catalog, hmsAuditor *auditor.Auditor) *HospitalManager {
	return &HospitalManager{repo: r, catalog: catalog, auditor: hmsAuditor}
}

func (m *HospitalManager) ListHospitals(ctx context.Context, page Page) ([]*model.Hospital, int, error) {
	var hospitals []*model.Hospital

	query := page.query().Order(repo.OrderField{Field: repo.IDField, Direction: repo.Asc})

	count, err := m.repo.List(ctx, model.Hospital{}, &hospitals, *query)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListHospitals, err)
	}

	return hospitals, count, nil
}

func (m *HospitalManager) GetHospitalBySlug(ctx context.Context, slug string) (*model.Hospital, error) {
	hospital := &model.Hospital{}

	_, err := m.repo.First(ctx, hospital, *whereEq(repo.NewQuery(), repo.SlugField, slug))
	if err != nil {
		return nil, hospitalLookupError(err)
	}

	return hospital, nil
}

func (m *HospitalManager) GetHospital(ctx context.Context, id tenant.ID) (*model.Hospital, error) {
	hospital := &model.Hospital{ID: int(id)}

	_, err := m.repo.First(ctx, hospital, *repo.NewQuery())
	if err != nil {
		return nil, hospitalLookupError(err)
	}

	return hospital, nil
}

// CreateHospital adds the directory entry of a configured hospital.
func (m *HospitalManager) CreateHospital(ctx context.Context, hospital *model.Hospital) error {
	id := tenant.ID(hospital.ID)
	if !m.catalog.Known(id) {
		return errs.Wrapf(ErrHospitalNotServed, "%d", hospital.ID)
	}

	err := hospital.Validate()
	if err != nil {
		return errs.Wrap(ErrValidatingHospital, err)
	}

	hospital.SchemaName = id.Schema()
	hospital.DomainURL = tenant.HostPrefix + id.String()

	err = m.repo.Create(ctx, hospital)
	if err != nil {
		return errs.Wrap(ErrCreateHospital, err)
	}

	log.Info(ctx, "Hospital added to directory",
		slog.Int("id", hospital.ID), slog.String("slug", hospital.Slug))

	m.auditor.RecordOrLog(ctx, auditor.Event{
		Action:     model.AuditCreate,
		Resource:   hospitalResource,
		ResourceID: strconv.Itoa(hospital.ID),
		Details:    map[string]string{"name": hospital.Name, "slug": hospital.Slug},
	})

	return nil
}

// UpdateHospital renames a hospital, which also recomputes its slug.
func (m *HospitalManager) UpdateHospital(ctx context.Context, id tenant.ID, patch *model.Hospital) (*model.Hospital, error) {
	patch.ID = int(id)
	patch.SchemaName = ""
	patch.DomainURL = ""

	err := m.repo.Transaction(ctx, func(ctx context.Context, r repo.Repo) error {
		found, err := r.Patch(ctx, patch, *repo.NewQuery())
		if err != nil {
			return err
		}

		if !found {
			return ErrHospitalNotFound
		}

		return nil
	})
	if err != nil {
		return nil, errs.Wrap(ErrUpdateHospital, err)
	}

	hospital, err := m.GetHospital(ctx, id)
	if err != nil {
		return nil, err
	}

	m.auditor.RecordOrLog(ctx, auditor.Event{
		Action:     model.AuditUpdate,
		Resource:   hospitalResource,
		ResourceID: id.String(),
		Details:    map[string]string{"name": hospital.Name, "slug": hospital.Slug},
	})

	return hospital, nil
}

func hospitalLookupError(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return errs.Wrap(ErrHospitalNotFound, err)
	}

	return errs.Wrap(ErrGetHospital, err)
}
