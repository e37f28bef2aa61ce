package mock

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"gorm.io/gorm/schema"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/repo"
)

var schemaCache = &sync.Map{}

// InMemoryDB holds the rows of one schema, by table. Rows are pointers to
// private copies of the stored structs.
type InMemoryDB struct {
	mu     sync.RWMutex
	tables map[string][]any
}

func NewInMemoryDB() *InMemoryDB {
	return &InMemoryDB{tables: make(map[string][]any)}
}

func parse(resource any) (*schema.Schema, error) {
	return schema.Parse(resource, schemaCache, schema.NamingStrategy{})
}

func (d *InMemoryDB) clone() *InMemoryDB {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c := NewInMemoryDB()
	for table, rows := range d.tables {
		copied := make([]any, 0, len(rows))
		for _, row := range rows {
			copied = append(copied, copyOf(row))
		}

		c.tables[table] = copied
	}

	return c
}

// Insert stores a copy of resource, enforcing primary key and unique columns.
func (d *InMemoryDB) Insert(ctx context.Context, resource repo.Resource) error {
	s, err := parse(resource)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	rv := reflect.Indirect(reflect.ValueOf(resource))

	for _, row := range d.tables[s.Table] {
		for _, f := range s.Fields {
			if !f.PrimaryKey && !f.Unique {
				continue
			}

			newValue, zero := f.ValueOf(ctx, rv)
			if zero {
				continue
			}

			existing, _ := f.ValueOf(ctx, reflect.ValueOf(row).Elem())
			if equal(existing, newValue) {
				return errs.Wrapf(repo.ErrUniqueConstraint, "%s.%s", s.Table, f.DBName)
			}
		}
	}

	d.tables[s.Table] = append(d.tables[s.Table], copyOf(resource))

	return nil
}

// Select returns copies of the rows of resource's table matching query, or
// the primary key of resource when the query has no conditions.
func (d *InMemoryDB) Select(ctx context.Context, resource repo.Resource, query repo.Query) ([]any, error) {
	s, err := parse(resource)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var matched []any

	for _, row := range d.tables[s.Table] {
		ok, err := matches(ctx, s, row, resource, query)
		if err != nil {
			return nil, err
		}

		if ok {
			matched = append(matched, copyOf(row))
		}
	}

	return matched, nil
}

// Update applies fn to the stored rows matching query.
func (d *InMemoryDB) Update(ctx context.Context, resource repo.Resource, query repo.Query, fn func(s *schema.Schema, row reflect.Value)) (int, error) {
	s, err := parse(resource)
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0

	for _, row := range d.tables[s.Table] {
		ok, err := matches(ctx, s, row, resource, query)
		if err != nil {
			return 0, err
		}

		if ok {
			fn(s, reflect.ValueOf(row).Elem())
			n++
		}
	}

	return n, nil
}

func (d *InMemoryDB) Remove(ctx context.Context, resource repo.Resource, query repo.Query) (int, error) {
	s, err := parse(resource)
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var matchErr error

	before := len(d.tables[s.Table])
	d.tables[s.Table] = slices.DeleteFunc(d.tables[s.Table], func(row any) bool {
		ok, err := matches(ctx, s, row, resource, query)
		if err != nil {
			matchErr = err
		}

		return ok
	})

	if matchErr != nil {
		return 0, matchErr
	}

	return before - len(d.tables[s.Table]), nil
}

func matches(ctx context.Context, s *schema.Schema, row any, resource repo.Resource, query repo.Query) (bool, error) {
	rowValue := reflect.ValueOf(row).Elem()

	if len(query.CompositeKeyGroup) == 0 {
		return matchesPrimaryKey(ctx, s, rowValue, resource), nil
	}

	result := false

	for i, group := range query.CompositeKeyGroup {
		ok, err := matchesKey(ctx, s, rowValue, group.CompositeKey)
		if err != nil {
			return false, err
		}

		switch {
		case i == 0:
			result = ok
		case group.IsStrict:
			result = result && ok
		default:
			result = result || ok
		}
	}

	return result, nil
}

// matchesPrimaryKey matches every row when resource carries no primary key,
// as a query without conditions does.
func matchesPrimaryKey(ctx context.Context, s *schema.Schema, row reflect.Value, resource repo.Resource) bool {
	rv := reflect.Indirect(reflect.ValueOf(resource))

	for _, f := range s.PrimaryFields {
		want, zero := f.ValueOf(ctx, rv)
		if zero {
			continue
		}

		got, _ := f.ValueOf(ctx, row)
		if !equal(got, want) {
			return false
		}
	}

	return true
}

func matchesKey(ctx context.Context, s *schema.Schema, row reflect.Value, key repo.CompositeKey) (bool, error) {
	if len(key.Conds) == 0 {
		return true, nil
	}

	result := key.IsStrict

	for _, cond := range key.Conds {
		if cond.Value.Err != nil {
			return false, cond.Value.Err
		}

		f := s.LookUpField(cond.Field)
		if f == nil {
			return false, errs.Wrapf(repo.ErrInvalidFieldName, "%q", cond.Field)
		}

		got, _ := f.ValueOf(ctx, row)

		var ok bool

		switch cond.Value.Key.Operation {
		case repo.Equal:
			ok = equal(got, cond.Value.Key.Value)
		case repo.GreaterThan:
			ok = compare(got, cond.Value.Key.Value) > 0
		case repo.LessThan:
			ok = compare(got, cond.Value.Key.Value) < 0
		default:
			return false, errs.Wrapf(ErrUnsupportedOp, "%s", cond.Value.Key.Operation)
		}

		if key.IsStrict {
			result = result && ok
		} else {
			result = result || ok
		}
	}

	return result, nil
}

func equal(a, b any) bool {
	a = deref(a)
	b = deref(b)

	return fmt.Sprint(a) == fmt.Sprint(b)
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}

		return rv.Elem().Interface()
	}

	return v
}

func copyOf(v any) any {
	rv := reflect.Indirect(reflect.ValueOf(v))
	c := reflect.New(rv.Type())
	c.Elem().Set(rv)

	return c.Interface()
}
