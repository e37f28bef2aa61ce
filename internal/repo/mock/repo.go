package mock

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/repo"
	hmscontext "github.com/openhms/hms/utils/context"
)

const publicSchema = "public"

type (
	beforeCreate interface{ BeforeCreate(*gorm.DB) error }
	beforeUpdate interface{ BeforeUpdate(*gorm.DB) error }
	beforeSave   interface{ BeforeSave(*gorm.DB) error }
	beforeDelete interface{ BeforeDelete(*gorm.DB) error }
)

// InMemoryRepository represents the repository for managing mock Resource data.
// Conditions support equality only and preloads are ignored.
type InMemoryRepository struct {
	db *InMemoryMultitenancyDB
}

// NewInMemoryRepository creates and returns a new instance of InMemoryRepository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		db: NewInMemoryMultitenancyDB(),
	}
}

// WithTenant returns the store of the schema owning resource.
func (r *InMemoryRepository) WithTenant(ctx context.Context, resource repo.Resource) (*InMemoryDB, error) {
	if resource.IsSharedModel() {
		return r.db.GetDB(publicSchema), nil
	}

	schemaName, err := hmscontext.ExtractTenantSchema(ctx)
	if err != nil {
		return nil, errs.Wrap(repo.ErrWithTenant, err)
	}

	return r.db.GetDB(schemaName), nil
}

// Create runs the create hooks of resource and stores it.
func (r *InMemoryRepository) Create(ctx context.Context, resource repo.Resource) error {
	if resource == nil {
		return ErrResourceIsNil
	}

	tenantDB, err := r.WithTenant(ctx, resource)
	if err != nil {
		return err
	}

	if h, ok := resource.(beforeSave); ok {
		err = h.BeforeSave(nil)
		if err != nil {
			return errs.Wrap(repo.ErrCreateResource, err)
		}
	}

	if h, ok := resource.(beforeCreate); ok {
		err = h.BeforeCreate(nil)
		if err != nil {
			return errs.Wrap(repo.ErrCreateResource, err)
		}
	}

	return tenantDB.Insert(ctx, resource)
}

// List retrieves records from the database based on the provided query parameters and model.
func (r *InMemoryRepository) List(
	ctx context.Context,
	resource repo.Resource,
	result any,
	query repo.Query,
) (int, error) {
	tenantDB, err := r.WithTenant(ctx, resource)
	if err != nil {
		return 0, err
	}

	rows, err := tenantDB.Select(ctx, resource, query)
	if err != nil {
		return 0, errs.Wrap(repo.ErrGetResource, err)
	}

	sortRows(ctx, rows, query.OrderFields)

	count := len(rows)

	limit := query.Limit
	if limit <= 0 {
		limit = repo.DefaultLimit
	}

	start := min(query.Offset, count)
	end := min(start+limit, count)

	err = assignList(result, rows[start:end])
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Delete removes the Resource
//
// It returns true if a record was deleted successfully.
// false if there was no record to delete
func (r *InMemoryRepository) Delete(ctx context.Context, resource repo.Resource, query repo.Query) (bool, error) {
	tenantDB, err := r.WithTenant(ctx, resource)
	if err != nil {
		return false, err
	}

	if h, ok := resource.(beforeDelete); ok {
		err = h.BeforeDelete(nil)
		if err != nil {
			return false, errs.Wrap(repo.ErrDeleteResource, err)
		}
	}

	n, err := tenantDB.Remove(ctx, resource, query)
	if err != nil {
		return false, errs.Wrap(ErrRepoDelete, err)
	}

	return n > 0, nil
}

func (r *InMemoryRepository) First(ctx context.Context, resource repo.Resource, query repo.Query) (bool, error) {
	tenantDB, err := r.WithTenant(ctx, resource)
	if err != nil {
		return false, err
	}

	rows, err := tenantDB.Select(ctx, resource, query)
	if err != nil {
		return false, errs.Wrap(ErrRepoFirst, err)
	}

	if len(rows) == 0 {
		return false, repo.ErrNotFound
	}

	sortRows(ctx, rows, query.OrderFields)

	reflect.ValueOf(resource).Elem().Set(reflect.ValueOf(rows[0]).Elem())

	return true, nil
}

// Patch copies the non zero fields of resource, or the selected ones, onto
// the row with the same primary key.
func (r *InMemoryRepository) Patch(ctx context.Context, resource repo.Resource, query repo.Query) (bool, error) {
	tenantDB, err := r.WithTenant(ctx, resource)
	if err != nil {
		return false, err
	}

	if h, ok := resource.(beforeSave); ok {
		err = h.BeforeSave(nil)
		if err != nil {
			return false, errs.Wrap(repo.ErrUpdateResource, err)
		}
	}

	if h, ok := resource.(beforeUpdate); ok {
		err = h.BeforeUpdate(nil)
		if err != nil {
			return false, errs.Wrap(repo.ErrUpdateResource, err)
		}
	}

	src := reflect.Indirect(reflect.ValueOf(resource))

	n, err := tenantDB.Update(ctx, resource, query, func(s *schema.Schema, row reflect.Value) {
		for _, f := range s.Fields {
			if f.DBName == "" || f.PrimaryKey {
				continue
			}

			v, zero := f.ValueOf(ctx, src)

			selected := query.UpdateFields.All || slices.Contains(query.UpdateFields.Fields, f.DBName)
			if !selected && (zero || len(query.UpdateFields.Fields) > 0) {
				continue
			}

			_ = f.Set(ctx, row, v)
		}
	})
	if err != nil {
		return false, errs.Wrap(ErrRepoPatch, err)
	}

	return n > 0, nil
}

// Transaction restores every store when txFunc fails.
func (r *InMemoryRepository) Transaction(ctx context.Context, txFunc repo.TransactionFunc) error {
	snapshot := r.db.snapshot()

	err := txFunc(ctx, r)
	if err != nil {
		r.db.restore(snapshot)
		return errs.Wrap(repo.ErrTransaction, err)
	}

	return nil
}

func sortRows(ctx context.Context, rows []any, order []repo.OrderField) {
	if len(order) == 0 || len(rows) == 0 {
		return
	}

	s, err := parse(rows[0])
	if err != nil {
		return
	}

	slices.SortStableFunc(rows, func(a, b any) int {
		for _, o := range order {
			f := s.LookUpField(o.Field)
			if f == nil {
				continue
			}

			va, _ := f.ValueOf(ctx, reflect.ValueOf(a).Elem())
			vb, _ := f.ValueOf(ctx, reflect.ValueOf(b).Elem())

			c := compare(va, vb)
			if o.Direction == repo.Desc {
				c = -c
			}

			if c != 0 {
				return c
			}
		}

		return 0
	})
}

type timeLike interface{ UnixNano() int64 }

func compare(a, b any) int {
	if ta, ok := deref(a).(timeLike); ok {
		if tb, ok := deref(b).(timeLike); ok {
			switch {
			case ta.UnixNano() < tb.UnixNano():
				return -1
			case ta.UnixNano() > tb.UnixNano():
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(fmt.Sprint(deref(a)), fmt.Sprint(deref(b)))
}

func assignList(result any, list []any) error {
	resultVal := reflect.ValueOf(result)
	if resultVal.Kind() != reflect.Ptr {
		return ErrMustPointerToSlice
	}

	sliceVal := resultVal.Elem()
	if sliceVal.Kind() != reflect.Slice {
		return ErrMustBeSlice
	}

	elemType := sliceVal.Type().Elem()
	newSlice := reflect.MakeSlice(reflect.SliceOf(elemType), 0, len(list))

	for _, item := range list {
		itemVal := reflect.ValueOf(item)

		if !itemVal.Type().AssignableTo(elemType) {
			itemVal = itemVal.Elem()
		}

		if !itemVal.Type().AssignableTo(elemType) {
			return ErrItemNotAssignable
		}

		newSlice = reflect.Append(newSlice, itemVal)
	}

	resultVal.Elem().Set(newSlice)

	return nil
}
