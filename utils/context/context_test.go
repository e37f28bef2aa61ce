package context_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hmscontext "github.com/openhms/hms/utils/context"
)

func TestExtractTenantSchema(t *testing.T) {
	tests := []struct {
		name      string
		schema    string
		expectErr bool
	}{
		{name: "Valid schema", schema: "hospital_2"},
		{name: "Empty schema", schema: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := hmscontext.CreateTenantContext(t.Context(), tt.schema)

			got, err := hmscontext.ExtractTenantSchema(ctx)
			if tt.expectErr {
				assert.ErrorIs(t, err, hmscontext.ErrExtractTenantSchema)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.schema, got)
		})
	}
}

func TestCreateTenantContextNilParent(t *testing.T) {
	//nolint:staticcheck
	ctx := hmscontext.CreateTenantContext(nil, "hospital_1")

	got, err := hmscontext.ExtractTenantSchema(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hospital_1", got)
}

func TestHospitalID(t *testing.T) {
	_, err := hmscontext.ExtractHospitalID(t.Context())
	assert.ErrorIs(t, err, hmscontext.ErrExtractHospitalID)

	ctx := hmscontext.New(t.Context(), hmscontext.WithHospitalID(4))

	id, err := hmscontext.ExtractHospitalID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, id)
}

func TestRequestID(t *testing.T) {
	_, err := hmscontext.GetRequestID(context.Background())
	assert.ErrorIs(t, err, hmscontext.ErrGetRequestID)

	ctx := hmscontext.InjectRequestID(t.Context())

	id, err := hmscontext.GetRequestID(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestPrincipal(t *testing.T) {
	_, err := hmscontext.ExtractPrincipal(t.Context())
	assert.ErrorIs(t, err, hmscontext.ErrExtractPrincipal)

	hospital := 2
	ctx := hmscontext.New(t.Context(), hmscontext.WithPrincipal(&hmscontext.Principal{
		Subject:    "dr-house",
		Role:       "doctor",
		HospitalID: &hospital,
	}))

	p, err := hmscontext.ExtractPrincipal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dr-house", p.Subject)
	assert.Equal(t, 2, *p.HospitalID)
}
