package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhms/hms/internal/model"
	"github.com/openhms/hms/internal/repo"
	"github.com/openhms/hms/internal/repo/mock"
	hmscontext "github.com/openhms/hms/utils/context"
)

var errAbort = errors.New("abort")

func hospitalCtx(t *testing.T, schema string) context.Context {
	t.Helper()
	return hmscontext.CreateTenantContext(t.Context(), schema)
}

func newPatient(mrn string) *model.Patient {
	return &model.Patient{MedicalRecordNumber: mrn, FirstName: "Ada", LastName: "Lovelace"}
}

func TestInMemoryRepositoryCreate(t *testing.T) {
	r := mock.NewInMemoryRepository()
	ctx := hospitalCtx(t, mock.HospitalSchema)

	t.Run("should assign ids and timestamps", func(t *testing.T) {
		p := newPatient("MRN-1")
		require.NoError(t, r.Create(ctx, p))

		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.False(t, p.CreatedAt.IsZero())
	})

	t.Run("should reject duplicated unique columns", func(t *testing.T) {
		err := r.Create(ctx, newPatient("MRN-1"))
		require.ErrorIs(t, err, repo.ErrUniqueConstraint)
	})

	t.Run("should require a hospital for hospital models", func(t *testing.T) {
		err := r.Create(t.Context(), newPatient("MRN-2"))
		require.ErrorIs(t, err, repo.ErrWithTenant)
		require.ErrorIs(t, err, hmscontext.ErrExtractTenantSchema)
	})

	t.Run("should reject nil resources", func(t *testing.T) {
		require.ErrorIs(t, r.Create(ctx, nil), mock.ErrResourceIsNil)
	})
}

func TestInMemoryRepositoryIsolation(t *testing.T) {
	r := mock.NewInMemoryRepository()
	h1 := hospitalCtx(t, "hospital_1")
	h2 := hospitalCtx(t, "hospital_2")

	require.NoError(t, r.Create(h1, newPatient("MRN-1")))
	require.NoError(t, r.Create(h2, newPatient("MRN-1")))
	require.NoError(t, r.Create(h2, newPatient("MRN-2")))

	var patients []model.Patient

	count, err := r.List(h1, model.Patient{}, &patients, *repo.NewQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = r.List(h2, model.Patient{}, &patients, *repo.NewQuery())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, patients, 2)
}

func TestInMemoryRepositoryFirst(t *testing.T) {
	r := mock.NewInMemoryRepository()
	ctx := hospitalCtx(t, mock.HospitalSchema)

	p := newPatient("MRN-1")
	require.NoError(t, r.Create(ctx, p))

	t.Run("should find by primary key", func(t *testing.T) {
		found := &model.Patient{BaseModel: model.BaseModel{ID: p.ID}}
		ok, err := r.First(ctx, found, *repo.NewQuery())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "MRN-1", found.MedicalRecordNumber)
	})

	t.Run("should find by condition", func(t *testing.T) {
		found := &model.Patient{}
		ck := repo.NewCompositeKey().Where(repo.MedicalRecordNumberField, "MRN-1")
		ok, err := r.First(ctx, found, *repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, p.ID, found.ID)
	})

	t.Run("should return not found", func(t *testing.T) {
		ok, err := r.First(ctx, &model.Patient{}, *repo.NewQueryByID(uuid.New()))
		require.ErrorIs(t, err, repo.ErrNotFound)
		assert.False(t, ok)
	})

	t.Run("should reject unknown fields", func(t *testing.T) {
		ck := repo.NewCompositeKey().Where("nope", 1)
		_, err := r.First(ctx, &model.Patient{}, *repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)))
		require.ErrorIs(t, err, repo.ErrInvalidFieldName)
	})
}

func TestInMemoryRepositoryList(t *testing.T) {
	r := mock.NewInMemoryRepository()
	ctx := hospitalCtx(t, mock.HospitalSchema)

	for _, mrn := range []string{"MRN-3", "MRN-1", "MRN-2"} {
		require.NoError(t, r.Create(ctx, newPatient(mrn)))
	}

	var patients []*model.Patient

	query := repo.NewQuery().
		Order(repo.OrderField{Field: repo.MedicalRecordNumberField, Direction: repo.Asc}).
		SetLimit(2).
		SetOffset(1)

	count, err := r.List(ctx, model.Patient{}, &patients, *query)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, patients, 2)
	assert.Equal(t, "MRN-2", patients[0].MedicalRecordNumber)
	assert.Equal(t, "MRN-3", patients[1].MedicalRecordNumber)

	t.Run("should fail on a non slice result", func(t *testing.T) {
		var p model.Patient
		_, err := r.List(ctx, model.Patient{}, p, *repo.NewQuery())
		require.ErrorIs(t, err, mock.ErrMustPointerToSlice)
	})
}

func TestInMemoryRepositoryPatch(t *testing.T) {
	r := mock.NewInMemoryRepository()
	ctx := hospitalCtx(t, mock.HospitalSchema)

	p := newPatient("MRN-1")
	p.Phone = "555"
	require.NoError(t, r.Create(ctx, p))

	t.Run("should only copy non zero fields", func(t *testing.T) {
		ok, err := r.Patch(ctx, &model.Patient{BaseModel: model.BaseModel{ID: p.ID}, FirstName: "Grace"}, *repo.NewQuery())
		require.NoError(t, err)
		assert.True(t, ok)

		found := &model.Patient{BaseModel: model.BaseModel{ID: p.ID}}
		_, err = r.First(ctx, found, *repo.NewQuery())
		require.NoError(t, err)
		assert.Equal(t, "Grace", found.FirstName)
		assert.Equal(t, "555", found.Phone)
	})

	t.Run("should clear selected fields", func(t *testing.T) {
		_, err := r.Patch(ctx, &model.Patient{BaseModel: model.BaseModel{ID: p.ID}}, *repo.NewQuery().Update("phone"))
		require.NoError(t, err)

		found := &model.Patient{BaseModel: model.BaseModel{ID: p.ID}}
		_, err = r.First(ctx, found, *repo.NewQuery())
		require.NoError(t, err)
		assert.Empty(t, found.Phone)
		assert.Equal(t, "Grace", found.FirstName)
	})

	t.Run("should report missing rows", func(t *testing.T) {
		ok, err := r.Patch(ctx, &model.Patient{BaseModel: model.BaseModel{ID: uuid.New()}, FirstName: "X"}, *repo.NewQuery())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestInMemoryRepositorySharedModels(t *testing.T) {
	r := mock.NewInMemoryRepository()

	h := &model.Hospital{ID: 1, Name: "St. Mary General"}
	require.NoError(t, r.Create(t.Context(), h))
	assert.Equal(t, "st-mary-general", h.Slug)

	_, err := r.Patch(t.Context(), &model.Hospital{ID: 1, Name: "St Mary West"}, *repo.NewQuery())
	require.NoError(t, err)

	found := &model.Hospital{ID: 1}
	_, err = r.First(t.Context(), found, *repo.NewQuery())
	require.NoError(t, err)
	assert.Equal(t, "st-mary-west", found.Slug)

	entry := &model.AuditLog{Action: model.AuditCreate, Resource: "patients", HospitalID: 1}
	require.NoError(t, r.Create(t.Context(), entry))

	_, err = r.Patch(t.Context(), &model.AuditLog{ID: entry.ID, Details: "x"}, *repo.NewQuery())
	require.ErrorIs(t, err, model.ErrAuditLogImmutable)

	_, err = r.Delete(t.Context(), &model.AuditLog{ID: entry.ID}, *repo.NewQuery())
	require.ErrorIs(t, err, model.ErrAuditLogImmutable)
}

func TestInMemoryRepositoryDelete(t *testing.T) {
	r := mock.NewInMemoryRepository()
	ctx := hospitalCtx(t, mock.HospitalSchema)

	p := newPatient("MRN-1")
	require.NoError(t, r.Create(ctx, p))

	ok, err := r.Delete(ctx, &model.Patient{BaseModel: model.BaseModel{ID: p.ID}}, *repo.NewQuery())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Delete(ctx, &model.Patient{BaseModel: model.BaseModel{ID: p.ID}}, *repo.NewQuery())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryRepositoryTransaction(t *testing.T) {
	r := mock.NewInMemoryRepository()
	ctx := hospitalCtx(t, mock.HospitalSchema)

	t.Run("should roll back on error", func(t *testing.T) {
		err := r.Transaction(ctx, func(ctx context.Context, tx repo.Repo) error {
			require.NoError(t, tx.Create(ctx, newPatient("MRN-1")))
			return errAbort
		})
		require.ErrorIs(t, err, repo.ErrTransaction)
		require.ErrorIs(t, err, errAbort)

		var patients []model.Patient
		count, err := r.List(ctx, model.Patient{}, &patients, *repo.NewQuery())
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("should keep writes on success", func(t *testing.T) {
		err := r.Transaction(ctx, func(ctx context.Context, tx repo.Repo) error {
			return tx.Create(ctx, newPatient("MRN-1"))
		})
		require.NoError(t, err)

		var patients []model.Patient
		count, err := r.List(ctx, model.Patient{}, &patients, *repo.NewQuery())
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
