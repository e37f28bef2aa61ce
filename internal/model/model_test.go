package model_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"github.com/openhms/hms/internal/model"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "punctuation", in: "St. Mary's Hospital!!", want: "st-marys-hospital"},
		{name: "separators collapse", in: "General  -_ Hospital", want: "general-hospital"},
		{name: "trims hyphens", in: "--City Clinic--", want: "city-clinic"},
		{name: "digits kept", in: "Clinic 24", want: "clinic-24"},
		{name: "only punctuation", in: "!!!", want: ""},
		{name: "unicode letters", in: "Hôpital Général", want: "hôpital-général"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.Slugify(tt.in))
		})
	}
}

func TestHospitalBeforeSave(t *testing.T) {
	h := &model.Hospital{Name: "Mercy General"}
	require.NoError(t, h.BeforeSave(nil))
	assert.Equal(t, "mercy-general", h.Slug)

	h.Name = "Mercy General West"
	require.NoError(t, h.BeforeSave(nil))
	assert.Equal(t, "mercy-general-west", h.Slug)

	h.Name = "???"
	assert.ErrorIs(t, h.BeforeSave(nil), model.ErrEmptySlug)
}

func TestHospitalValidate(t *testing.T) {
	assert.ErrorIs(t, model.Hospital{}.Validate(), model.ErrEmptyHospitalName)
	assert.ErrorIs(t, model.Hospital{Name: "!!"}.Validate(), model.ErrEmptySlug)
	assert.NoError(t, model.Hospital{Name: "Central"}.Validate())
}

func TestRoleValidate(t *testing.T) {
	for _, r := range []model.Role{
		model.RoleAdmin, model.RoleDoctor, model.RoleNurse, model.RoleStaff, model.RolePatient,
	} {
		assert.NoError(t, r.Validate(), r)
	}

	assert.ErrorIs(t, model.Role("janitor").Validate(), model.ErrInvalidRole)
}

func TestIdentityValidate(t *testing.T) {
	tests := []struct {
		name string
		id   model.Identity
		err  error
	}{
		{name: "valid", id: model.Identity{Email: "a@b.c", Name: "A", Role: model.RoleNurse}},
		{name: "no email", id: model.Identity{Name: "A", Role: model.RoleNurse}, err: model.ErrEmptyEmail},
		{name: "bad email", id: model.Identity{Email: "ab", Name: "A", Role: model.RoleNurse}, err: model.ErrInvalidEmail},
		{name: "no name", id: model.Identity{Email: "a@b.c", Role: model.RoleNurse}, err: model.ErrEmptyFullName},
		{name: "bad role", id: model.Identity{Email: "a@b.c", Name: "A", Role: "x"}, err: model.ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestBaseModelBeforeCreate(t *testing.T) {
	p := &model.Patient{}
	require.NoError(t, p.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	id := uuid.New()
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	p = &model.Patient{BaseModel: model.BaseModel{ID: id, AutoTimeModel: model.AutoTimeModel{CreatedAt: created}}}
	require.NoError(t, p.BeforeCreate(nil))
	assert.Equal(t, id, p.ID)
	assert.Equal(t, created, p.CreatedAt)

	require.NoError(t, p.BeforeUpdate(nil))
	assert.True(t, p.UpdatedAt.After(created))
}

func TestAuditLogIsAppendOnly(t *testing.T) {
	a := &model.AuditLog{Action: model.AuditCreate, Resource: "patients"}
	require.NoError(t, a.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, a.ID)

	assert.ErrorIs(t, a.BeforeUpdate(nil), model.ErrAuditLogImmutable)
	assert.ErrorIs(t, a.BeforeDelete(nil), model.ErrAuditLogImmutable)

	assert.ErrorIs(t, (&model.AuditLog{}).BeforeCreate(nil), model.ErrEmptyAuditAction)
}

func TestPrescriptionValidate(t *testing.T) {
	valid := model.Prescription{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Status:    model.PrescriptionActive,
		Items:     []model.PrescriptionItem{{MedicationID: uuid.New(), Quantity: 2}},
	}
	require.NoError(t, valid.Validate())

	noItems := valid
	noItems.Items = nil
	assert.ErrorIs(t, noItems.Validate(), model.ErrEmptyPrescription)

	badQty := valid
	badQty.Items = []model.PrescriptionItem{{MedicationID: uuid.New()}}
	assert.ErrorIs(t, badQty.Validate(), model.ErrInvalidQuantity)

	badStatus := valid
	badStatus.Status = "lost"
	assert.ErrorIs(t, badStatus.Validate(), model.ErrInvalidRxStatus)
}

func parse(t *testing.T, m any) *schema.Schema {
	t.Helper()

	s, err := schema.Parse(m, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	return s
}

func TestTenantRelationships(t *testing.T) {
	tests := []struct {
		model    any
		field    string
		relation schema.RelationshipType
	}{
		{model: &model.User{}, field: "Doctor", relation: schema.HasOne},
		{model: &model.Doctor{}, field: "MedicalRecords", relation: schema.HasMany},
		{model: &model.Doctor{}, field: "Prescriptions", relation: schema.HasMany},
		{model: &model.Patient{}, field: "MedicalRecords", relation: schema.HasMany},
		{model: &model.Patient{}, field: "Prescriptions", relation: schema.HasMany},
		{model: &model.MedicalRecord{}, field: "Patient", relation: schema.BelongsTo},
		{model: &model.MedicalRecord{}, field: "Doctor", relation: schema.BelongsTo},
		{model: &model.Prescription{}, field: "Items", relation: schema.HasMany},
		{model: &model.Medication{}, field: "Items", relation: schema.HasMany},
		{model: &model.PrescriptionItem{}, field: "Medication", relation: schema.BelongsTo},
	}

	for _, tt := range tests {
		s := parse(t, tt.model)
		t.Run(s.Name+"."+tt.field, func(t *testing.T) {
			rel, ok := s.Relationships.Relations[tt.field]
			require.True(t, ok)
			assert.Equal(t, tt.relation, rel.Type)
		})
	}
}

func TestCascadingDeletes(t *testing.T) {
	user := parse(t, &model.User{})
	constraint := user.Relationships.Relations["Doctor"].ParseConstraint()
	require.NotNil(t, constraint)
	assert.Equal(t, "CASCADE", constraint.OnDelete)

	rx := parse(t, &model.Prescription{})
	constraint = rx.Relationships.Relations["Items"].ParseConstraint()
	require.NotNil(t, constraint)
	assert.Equal(t, "CASCADE", constraint.OnDelete)
}

func TestModelSets(t *testing.T) {
	for _, m := range model.TenantModels() {
		assert.False(t, m.IsSharedModel(), m.TableName())
		assert.NotContains(t, m.TableName(), ".")
	}

	for _, m := range model.CentralModels() {
		assert.True(t, m.IsSharedModel(), m.TableName())
		assert.Contains(t, m.TableName(), "public.")
	}
}
