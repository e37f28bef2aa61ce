package tenant

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/log"
)

// ID identifies a hospital. Every hospital is a tenant with its own schema
// and, when configured, its own database.
type ID int

const (
	DefaultID ID = 1

	SchemaPrefix = "hospital_"
	HostPrefix   = "hospital"
)

var DefaultIDs = []ID{1, 2, 3, 4, 5}

var (
	ErrInvalidHospitalID = errors.New("invalid hospital id")
	ErrUnknownHospital   = errors.New("unknown hospital")
	ErrInvalidPolicy     = errors.New("invalid tenancy policy")
	ErrEmptyCatalog      = errors.New("at least one hospital must be configured")
	ErrDefaultNotKnown   = errors.New("default hospital is not in the configured set")
)

func (id ID) Schema() string {
	return SchemaPrefix + strconv.Itoa(int(id))
}

func (id ID) String() string {
	return strconv.Itoa(int(id))
}

// Parse reads a hospital id written either as a bare number ("3") or
// as a host label ("hospital3").
func Parse(s string) (ID, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), HostPrefix)

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Wrap(ErrInvalidHospitalID, err)
	}

	if n <= 0 {
		return 0, errs.Wrapf(ErrInvalidHospitalID, "%d is not positive", n)
	}

	return ID(n), nil
}

// ParseSchema is the inverse of ID.Schema.
func ParseSchema(schema string) (ID, error) {
	rest, ok := strings.CutPrefix(schema, SchemaPrefix)
	if !ok {
		return 0, errs.Wrapf(ErrInvalidHospitalID, "schema %q", schema)
	}

	return Parse(rest)
}

// Policy decides what happens to ids outside the configured set.
type Policy string

const (
	// PolicyLenient coerces unknown ids to the default hospital.
	PolicyLenient Policy = "lenient"
	// PolicyStrict rejects unknown ids.
	PolicyStrict Policy = "strict"
)

func (p Policy) Validate() error {
	switch p {
	case PolicyLenient, PolicyStrict:
		return nil
	default:
		return errs.Wrapf(ErrInvalidPolicy, "%q", string(p))
	}
}

// Catalog is the fixed set of hospitals served by a deployment.
type Catalog struct {
	ids    []ID
	known  map[ID]struct{}
	def    ID
	policy Policy
}

func NewCatalog(ids []ID, def ID, policy Policy) (*Catalog, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyCatalog
	}

	if policy == "" {
		policy = PolicyLenient
	}

	err := policy.Validate()
	if err != nil {
		return nil, err
	}

	known := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, errs.Wrapf(ErrInvalidHospitalID, "%d is not positive", int(id))
		}

		known[id] = struct{}{}
	}

	if _, ok := known[def]; !ok {
		return nil, errs.Wrapf(ErrDefaultNotKnown, "%d", int(def))
	}

	sorted := make([]ID, 0, len(known))
	for id := range known {
		sorted = append(sorted, id)
	}

	slices.Sort(sorted)

	return &Catalog{
		ids:    sorted,
		known:  known,
		def:    def,
		policy: policy,
	}, nil
}

// IDs returns the configured hospitals in ascending order.
func (c *Catalog) IDs() []ID {
	return slices.Clone(c.ids)
}

func (c *Catalog) Default() ID {
	return c.def
}

func (c *Catalog) Policy() Policy {
	return c.policy
}

func (c *Catalog) Known(id ID) bool {
	_, ok := c.known[id]
	return ok
}

// Normalize maps a requested id onto the catalog according to the policy.
func (c *Catalog) Normalize(ctx context.Context, id ID) (ID, error) {
	if c.Known(id) {
		return id, nil
	}

	if c.policy == PolicyStrict {
		return 0, errs.Wrapf(ErrUnknownHospital, "%d", int(id))
	}

	log.Warn(ctx, "Unknown hospital requested, using default",
		slog.Int("requested", int(id)),
		slog.Int("default", int(c.def)),
	)

	return c.def, nil
}
