package context

import (
	"context"
	"errors"

	"github.com/bartventer/gorm-multitenancy/middleware/nethttp/v8"
	"github.com/google/uuid"

	"github.com/openhms/hms/internal/errs"
)

var (
	ErrExtractTenantSchema = errors.New("could not extract tenant schema from context")
	ErrExtractHospitalID   = errors.New("could not extract hospital ID from context")
	ErrGetRequestID        = errors.New("no requestID found in context")
	ErrExtractPrincipal    = errors.New("no authenticated principal in context")
)

type Opt func(ctx context.Context) context.Context

//nolint:fatcontext
func New(ctx context.Context, opts ...Opt) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	for _, opt := range opts {
		ctx = opt(ctx)
	}

	return ctx
}

// ExtractTenantSchema returns the schema the gorm-multitenancy middleware
// stored for the request.
func ExtractTenantSchema(ctx context.Context) (string, error) {
	schema, ok := ctx.Value(nethttp.TenantKey).(string)
	if !ok || schema == "" {
		return "", errs.Wrap(ErrExtractTenantSchema, nethttp.ErrTenantInvalid)
	}

	return schema, nil
}

func CreateTenantContext(ctx context.Context, schema string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, nethttp.TenantKey, schema)
}

func WithTenantSchema(schema string) Opt {
	return func(ctx context.Context) context.Context {
		return CreateTenantContext(ctx, schema)
	}
}

type key string

const (
	requestID  = key("requestID")
	hospitalID = key("hospitalID")
	principal  = key("principal")
)

func InjectHospitalID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, hospitalID, id)
}

func WithHospitalID(id int) Opt {
	return func(ctx context.Context) context.Context {
		return InjectHospitalID(ctx, id)
	}
}

func ExtractHospitalID(ctx context.Context) (int, error) {
	id, ok := ctx.Value(hospitalID).(int)
	if !ok || id <= 0 {
		return 0, ErrExtractHospitalID
	}

	return id, nil
}

func InjectRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestID, uuid.NewString())
}

// SetRequestID keeps a request id chosen by the caller.
func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestID, id)
}

func GetRequestID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(requestID).(string)
	if !ok || id == "" {
		return "", ErrGetRequestID
	}

	return id, nil
}

// Principal is the authenticated caller of a request.
type Principal struct {
	Subject    string
	Role       string
	HospitalID *int
}

func InjectPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principal, p)
}

func WithPrincipal(p *Principal) Opt {
	return func(ctx context.Context) context.Context {
		return InjectPrincipal(ctx, p)
	}
}

func ExtractPrincipal(ctx context.Context) (*Principal, error) {
	p, ok := ctx.Value(principal).(*Principal)
	if !ok || p == nil {
		return nil, ErrExtractPrincipal
	}

	return p, nil
}
