package db

import (
	"context"
	"errors"
	"sync"

	"github.com/bartventer/gorm-multitenancy/v8/pkg/driver"
	"gorm.io/gorm/schema"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/model"
)

var (
	ErrRegisterModels = errors.New("failed to register models")
	ErrParseModel     = errors.New("failed to parse model")
)

// ModelSet is a group of entities bound to one connection, with their parsed
// GORM schemas.
type ModelSet struct {
	Models  []driver.TenantTabler
	Schemas []*schema.Schema
}

// Tables returns the table names in registration order.
func (m *ModelSet) Tables() []string {
	tables := make([]string, 0, len(m.Schemas))
	for _, s := range m.Schemas {
		tables = append(tables, s.Table)
	}

	return tables
}

// Schema looks up the parsed schema of a table.
func (m *ModelSet) Schema(table string) (*schema.Schema, bool) {
	for _, s := range m.Schemas {
		if s.Table == table {
			return s, true
		}
	}

	return nil, false
}

type builtModels struct {
	tenant  *ModelSet
	central *ModelSet
}

// BuildModelSet returns the hospital entities bound to conn. The work is
// done once per connection and every later call returns the same set.
func BuildModelSet(ctx context.Context, conn *Connection) (*ModelSet, error) {
	built, err := conn.buildModels(ctx)
	if err != nil {
		return nil, err
	}

	return built.tenant, nil
}

// BuildCentralModelSet returns the central entities bound to conn.
func BuildCentralModelSet(ctx context.Context, conn *Connection) (*ModelSet, error) {
	built, err := conn.buildModels(ctx)
	if err != nil {
		return nil, err
	}

	return built.central, nil
}

// Both sets are registered together: the multitenancy driver accepts a
// single registration per handle and the central handle also serves
// fallback hospitals.
func (c *Connection) buildModels(ctx context.Context) (*builtModels, error) {
	c.modelsOnce.Do(func() {
		tenantModels := model.TenantModels()
		centralModels := model.CentralModels()

		all := make([]driver.TenantTabler, 0, len(tenantModels)+len(centralModels))
		all = append(all, centralModels...)
		all = append(all, tenantModels...)

		err := c.DB.RegisterModels(ctx, all...)
		if err != nil {
			c.modelsErr = errs.Wrap(ErrRegisterModels, err)
			return
		}

		cache := &sync.Map{}

		tenantSet, err := parseModels(tenantModels, cache, c.DB.NamingStrategy)
		if err != nil {
			c.modelsErr = err
			return
		}

		centralSet, err := parseModels(centralModels, cache, c.DB.NamingStrategy)
		if err != nil {
			c.modelsErr = err
			return
		}

		c.models = &builtModels{tenant: tenantSet, central: centralSet}
	})

	return c.models, c.modelsErr
}

func parseModels(models []driver.TenantTabler, cache *sync.Map, namer schema.Namer) (*ModelSet, error) {
	set := &ModelSet{
		Models:  models,
		Schemas: make([]*schema.Schema, 0, len(models)),
	}

	for _, m := range models {
		s, err := schema.Parse(m, cache, namer)
		if err != nil {
			return nil, errs.Wrapf(ErrParseModel, "%s: %v", m.TableName(), err)
		}

		set.Schemas = append(set.Schemas, s)
	}

	return set, nil
}
