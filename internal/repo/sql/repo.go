package sql

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/openhms/hms/internal/db"
	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/log"
	"github.com/openhms/hms/internal/repo"
	"github.com/openhms/hms/internal/repo/violations"
	hmscontext "github.com/openhms/hms/utils/context"
)

const PublicSchema = "public"

var ErrUnsupportedOrderDirective = errors.New("unsupported order directive")

// ResourceRepository stores shared resources in the central database and
// hospital resources through the TenantDB bound to the request context.
type ResourceRepository struct {
	central *db.Connection

	// set on repositories handed to a TransactionFunc
	tx     *multitenancy.DB
	txConn *db.Connection
}

// NewRepository creates and returns a new instance of ResourceRepository.
func NewRepository(central *db.Connection) *ResourceRepository {
	return &ResourceRepository{
		central: central,
	}
}

func (r *ResourceRepository) target(ctx context.Context, resource repo.Resource) (*db.Connection, string, error) {
	if resource.IsSharedModel() {
		return r.central, PublicSchema, nil
	}

	tdb, ok := db.TenantDBFromContext(ctx)
	if !ok {
		return nil, "", errs.Wrap(repo.ErrWithTenant, hmscontext.ErrExtractTenantSchema)
	}

	return tdb.Conn, tdb.Schema, nil
}

// WithTenant runs GORM actions in the schema owning resource.
func (r *ResourceRepository) WithTenant(
	ctx context.Context,
	resource repo.Resource,
	fn func(tx *multitenancy.DB) error,
) error {
	conn, schemaName, err := r.target(ctx, resource)
	if err != nil {
		return err
	}

	if r.tx != nil {
		return r.withinTransaction(ctx, conn, schemaName, fn)
	}

	var fnErr error

	txErr := conn.WithTenant(ctx, schemaName, func(tx *multitenancy.DB) error {
		fnErr = fn(tx)
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}

	if txErr != nil {
		return translate(txErr, repo.ErrTransaction)
	}

	return nil
}

func (r *ResourceRepository) withinTransaction(
	ctx context.Context,
	conn *db.Connection,
	schemaName string,
	fn func(tx *multitenancy.DB) error,
) error {
	if conn != r.txConn {
		return repo.ErrCrossDatabaseTx
	}

	reset, err := r.tx.UseTenant(ctx, schemaName)

	defer func() {
		if reset != nil {
			resetErr := reset()
			if resetErr != nil {
				log.Error(ctx, "error resetting hospital schema", resetErr)
			}
		}
	}()

	if err != nil {
		return translate(err, repo.ErrWithTenant)
	}

	return fn(r.tx)
}

// Create adds meta information and stores a Resource.
func (r *ResourceRepository) Create(ctx context.Context, resource repo.Resource) error {
	return r.WithTenant(ctx, resource, func(tx *multitenancy.DB) error {
		err := tx.WithContext(ctx).Create(resource).Error
		if err != nil {
			log.Error(ctx, "error creating resource", err)
			return translate(err, repo.ErrCreateResource)
		}

		return nil
	})
}

// List retrieves records from the database based on the provided query parameters and model.
// Result is an address
func (r *ResourceRepository) List(
	ctx context.Context,
	resource repo.Resource,
	result any,
	query repo.Query,
) (int, error) {
	var count int64

	err := r.WithTenant(ctx, resource, func(tx *multitenancy.DB) error {
		db, err := applyQuery(tx.WithContext(ctx).Model(result), query)
		if err != nil {
			return err
		}

		db = db.Count(&count)
		if db.Error != nil {
			return translate(db.Error, repo.ErrGetResource)
		}

		for _, order := range query.OrderFields {
			switch order.Direction {
			case repo.Desc:
				db = db.Order(order.Field + " desc")
			case repo.Asc:
				db = db.Order(order.Field + " asc")
			default:
				return ErrUnsupportedOrderDirective
			}
		}

		res := applyPagination(db, query).Find(result)
		if res.Error != nil {
			return translate(res.Error, repo.ErrGetResource)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// Delete removes the Resource.
//
// It returns true if a record was deleted successfully,
// false if there was no record to delete,
// and error if there was an error during the deletion.
// If no query is provided it deletes the item by the primaryKey
func (r *ResourceRepository) Delete(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	var result *gorm.DB

	err := r.WithTenant(ctx, resource, func(tx *multitenancy.DB) error {
		db, err := applyQuery(tx.WithContext(ctx).Clauses(clause.Returning{}), query)
		if err != nil {
			return err
		}

		result = db.Delete(resource)
		if result.Error != nil {
			log.Error(ctx, "error deleting resource", result.Error)
			return translate(result.Error, repo.ErrDeleteResource)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return result.RowsAffected > 0, nil
}

// First fill given Resource with data, if found. Given Resource is used as query data.
// It will find the resource with the primary key as the where condition by omition
func (r *ResourceRepository) First(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	var res *gorm.DB

	err := r.WithTenant(ctx, resource, func(tx *multitenancy.DB) error {
		db, err := applyQuery(tx.WithContext(ctx).Model(resource), query)
		if err != nil {
			return err
		}

		res = db.First(resource)
		if res.Error != nil {
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				log.Error(ctx, "error finding the resource", res.Error)
			}

			return translate(res.Error, repo.ErrGetResource)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return res.RowsAffected > 0, nil
}

// Patch will patch the resource with primary key as the where condition.
//
// It returns true if a record was patched successfully,
// and error if there was an error during the patch.
func (r *ResourceRepository) Patch(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	var res *gorm.DB

	err := r.WithTenant(ctx, resource, func(tx *multitenancy.DB) error {
		db, err := applyQuery(tx.WithContext(ctx).Model(resource), query)
		if err != nil {
			return err
		}

		res = applyUpdateQuery(db.Clauses(clause.Returning{}), query).Updates(resource)
		if res.Error != nil {
			log.Error(ctx, "error updating resource", res.Error)
			return translate(res.Error, repo.ErrUpdateResource)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return res.RowsAffected > 0, nil
}

// Transaction wraps a function inside a database transaction on the
// database serving the request: the hospital one when the context carries a
// TenantDB, the central one otherwise.
// txFunc is a type TransactionFunc where we can define the transactional logic.
// if txFunc return no error then transaction is committed,
// else if txFunc return error then transaction is rolled back.
// Note: please dont use Goroutines inside the txFunc as this might lead to panic.
func (r *ResourceRepository) Transaction(ctx context.Context, txFunc repo.TransactionFunc) error {
	if r.tx != nil {
		return txFunc(ctx, r)
	}

	conn := r.central
	if tdb, ok := db.TenantDBFromContext(ctx); ok {
		conn = tdb.Conn
	}

	err := conn.Transaction(ctx, func(tx *multitenancy.DB) error {
		errorChan := make(chan error, 1)

		go func() {
			errorChan <- txFunc(ctx, &ResourceRepository{
				central: r.central,
				tx:      tx,
				txConn:  conn,
			})
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errorChan:
			return err
		}
	})
	if violations.IsConnectivity(err) {
		return errs.Wrap(repo.ErrServerUnavailable, err)
	}

	if err != nil {
		return errs.Wrap(repo.ErrTransaction, err)
	}

	return nil
}

// translate maps driver failures to the repository errors callers match on.
func translate(err error, base error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.Wrap(repo.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey) || violations.IsUniqueConstraint(err):
		return errs.Wrap(repo.ErrUniqueConstraint, err)
	case violations.IsConnectivity(err):
		return errs.Wrap(repo.ErrServerUnavailable, err)
	default:
		return errs.Wrap(base, err)
	}
}

// apply update operations on the db action
func applyUpdateQuery(db *gorm.DB, query repo.Query) *gorm.DB {
	if query.UpdateFields.All {
		db = db.Select("*")
	}

	if !query.UpdateFields.All && len(query.UpdateFields.Fields) > 0 {
		db = db.Select(query.UpdateFields.Fields)
	}

	return db
}

// applyQuery applies the query to the database.
func applyQuery(db *gorm.DB, query repo.Query) (*gorm.DB, error) {
	if len(query.CompositeKeyGroup) > 0 {
		baseQuery := db.Session(&gorm.Session{NewDB: true})

		for i, ck := range query.CompositeKeyGroup {
			tk, err := handleCompositeKey(db, ck.CompositeKey)
			if err != nil {
				return nil, err
			}

			if i == 0 || ck.IsStrict {
				baseQuery = baseQuery.Where(tk)
				continue
			}

			baseQuery = baseQuery.Or(tk)
		}

		db = db.Where(baseQuery)
	}

	return db, nil
}

func applyPagination(db *gorm.DB, query repo.Query) *gorm.DB {
	if query.Limit <= 0 {
		query.Limit = repo.DefaultLimit
	}

	return db.Offset(query.Offset).Limit(query.Limit)
}

// handleCompositeKey applies the composite key to the query.
func handleCompositeKey(db *gorm.DB, compositeKey repo.CompositeKey) (*gorm.DB, error) {
	tx := db.Session(&gorm.Session{NewDB: true})

	for _, cond := range compositeKey.Conds {
		entry := cond.Value
		if entry.Err != nil {
			return nil, entry.Err
		}

		if !validField(cond.Field) {
			return nil, errs.Wrapf(repo.ErrInvalidFieldName, "%q", cond.Field)
		}

		tx = applyFieldCondition(tx, cond.Field, entry.Key, compositeKey.IsStrict)
	}

	return tx, nil
}

// validField accepts column names and table qualified column names only, as
// fields are written into the statement.
func validField(field string) bool {
	if field == "" {
		return false
	}

	for _, c := range field {
		if c != '_' && c != '.' && (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}

	return true
}

func applyFieldCondition(tx *gorm.DB, field string, key repo.Key, isStrict bool) *gorm.DB {
	switch key.Operation {
	case repo.GreaterThan, repo.LessThan:
		return applyCondition(tx, field, string(key.Operation), key.Value, isStrict)
	default:
		return applyFieldEqualCondition(tx, field, key, isStrict)
	}
}

func applyFieldEqualCondition(tx *gorm.DB, field string, key repo.Key, isStrict bool) *gorm.DB {
	v := reflect.ValueOf(key.Value)
	isSlice := (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && v.Type() != reflect.TypeFor[uuid.UUID]()

	if isSlice {
		return applyCondition(tx, field, "IN", key.Value, isStrict)
	}

	return applyCondition(tx, field, "=", key.Value, isStrict)
}

func applyCondition(tx *gorm.DB, field, operator string, value any, isStrict bool) *gorm.DB {
	if isStrict {
		return tx.Where(fmt.Sprintf("%s %s (?)", field, operator), value)
	}

	return tx.Or(fmt.Sprintf("%s %s ?", strings.TrimSpace(field), operator), value)
}
