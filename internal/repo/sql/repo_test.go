//go:build integration

package sql_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhms/hms/internal/model"
	"github.com/openhms/hms/internal/repo"
	"github.com/openhms/hms/internal/repo/sql"
	"github.com/openhms/hms/internal/testutils"
	"github.com/openhms/hms/internal/tenant"
)

func newPatient(i int) *model.Patient {
	return &model.Patient{
		MedicalRecordNumber: fmt.Sprintf("MRN-%04d", i),
		FirstName:           "Ada",
		LastName:            fmt.Sprintf("Patient %d", i),
	}
}

func TestRepo_HospitalIsolation(t *testing.T) {
	env := testutils.NewTestEnv(t, testutils.TestDBConfig{
		Dedicated: []tenant.ID{2},
		Hospitals: []tenant.ID{1, 2, 3},
	})
	r := sql.NewRepository(env.Registry.Central())

	ctxs := map[tenant.ID]context.Context{}
	for _, id := range []tenant.ID{1, 2, 3} {
		ctxs[id] = env.HospitalContext(t, t.Context(), id)
	}

	for id, ctx := range ctxs {
		for i := range int(id) {
			require.NoError(t, r.Create(ctx, newPatient(i)))
		}
	}

	t.Run("Should only list the patients of the bound hospital", func(t *testing.T) {
		for id, ctx := range ctxs {
			var patients []*model.Patient

			count, err := r.List(ctx, model.Patient{}, &patients, *repo.NewQuery())
			require.NoError(t, err)
			assert.Equal(t, int(id), count)
			assert.Len(t, patients, int(id))
		}
	})

	t.Run("Should report duplicate record numbers as unique violations", func(t *testing.T) {
		err := r.Create(ctxs[1], newPatient(0))
		require.ErrorIs(t, err, repo.ErrUniqueConstraint)

		require.NoError(t, r.Create(ctxs[2], newPatient(99)))
		require.NoError(t, r.Create(ctxs[3], newPatient(99)))
	})

	t.Run("Should find by query and report not found", func(t *testing.T) {
		p := &model.Patient{}
		ok, err := r.First(ctxs[2], p, *repo.NewQuery().Where(repo.NewCompositeKeyGroup(
			repo.NewCompositeKey().Where(repo.MedicalRecordNumberField, "MRN-0001"),
		)))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Patient 1", p.LastName)

		_, err = r.First(ctxs[1], &model.Patient{}, *repo.NewQuery().Where(repo.NewCompositeKeyGroup(
			repo.NewCompositeKey().Where(repo.MedicalRecordNumberField, "MRN-0001"),
		)))
		require.ErrorIs(t, err, repo.ErrNotFound)
	})
}

func TestRepo_SharedModels(t *testing.T) {
	env := testutils.NewTestEnv(t, testutils.TestDBConfig{Hospitals: []tenant.ID{1}})
	r := sql.NewRepository(env.Registry.Central())

	h := &model.Hospital{ID: 1, Name: "St. Mary's Hospital!!"}
	h.SchemaName = tenant.ID(1).Schema()
	h.DomainURL = "hospital1"

	require.NoError(t, r.Create(t.Context(), h))
	assert.Equal(t, "st-marys-hospital", h.Slug)

	h.Name = "Saint Mary General"
	ok, err := r.Patch(t.Context(), h, *repo.NewQuery())
	require.NoError(t, err)
	assert.True(t, ok)

	got := &model.Hospital{ID: 1}
	_, err = r.First(t.Context(), got, *repo.NewQuery())
	require.NoError(t, err)
	assert.Equal(t, "saint-mary-general", got.Slug)

	entry := &model.AuditLog{HospitalID: 1, Action: model.AuditCreate, Resource: "hospital"}
	require.NoError(t, r.Create(t.Context(), entry))

	entry.Details = "changed"
	_, err = r.Patch(t.Context(), entry, *repo.NewQuery())
	require.ErrorIs(t, err, model.ErrAuditLogImmutable)
}

func TestRepo_Transaction(t *testing.T) {
	env := testutils.NewTestEnv(t, testutils.TestDBConfig{
		Dedicated: []tenant.ID{2},
		Hospitals: []tenant.ID{1, 2},
	})
	r := sql.NewRepository(env.Registry.Central())
	ctx := env.HospitalContext(t, t.Context(), 2)

	t.Run("Should roll back on error", func(t *testing.T) {
		err := r.Transaction(ctx, func(ctx context.Context, tx repo.Repo) error {
			require.NoError(t, tx.Create(ctx, newPatient(1)))
			return tx.Create(ctx, newPatient(1))
		})
		require.ErrorIs(t, err, repo.ErrTransaction)

		count, err := r.List(ctx, model.Patient{}, &[]*model.Patient{}, *repo.NewQuery())
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Should refuse central writes inside a dedicated hospital transaction", func(t *testing.T) {
		err := r.Transaction(ctx, func(ctx context.Context, tx repo.Repo) error {
			return tx.Create(ctx, &model.AuditLog{HospitalID: 2, Action: model.AuditCreate, Resource: "x", CreatedAt: time.Now()})
		})
		require.ErrorIs(t, err, repo.ErrCrossDatabaseTx)
	})
}
