package repo

import (
	"context"
	"errors"
)

// TransactionFunc is func signature for ExecTransaction.
type TransactionFunc func(context.Context, Repo) error

// Repo defines an interface for Repository operations.
type Repo interface {
	Create(ctx context.Context, resource Resource) error
	List(ctx context.Context, resource Resource, result any, query Query) (int, error)
	Delete(ctx context.Context, resource Resource, query Query) (bool, error)
	First(ctx context.Context, resource Resource, query Query) (bool, error)
	Patch(ctx context.Context, resource Resource, query Query) (bool, error)
	Transaction(ctx context.Context, txFunc TransactionFunc) error
}

// Resource defines the interface for Resource operations. Shared resources
// live in the central database, the others in the schema of the hospital
// bound to the request.
type Resource interface {
	IsSharedModel() bool
	TableName() string
}

const DefaultLimit = 100

var (
	ErrInvalidUUID       = errors.New("invalid UUID format")
	ErrNotFound          = errors.New("resource not found")
	ErrUniqueConstraint  = errors.New("unique constraint violation")
	ErrServerUnavailable = errors.New("database is unavailable")
	ErrCreateResource    = errors.New("failed to create resource")
	ErrUpdateResource    = errors.New("failed to update resource")
	ErrDeleteResource    = errors.New("failed to delete resource")
	ErrGetResource       = errors.New("failed to get resource")
	ErrTransaction       = errors.New("failed to execute transaction")
	ErrWithTenant        = errors.New("failed to use hospital from context")
	ErrCrossDatabaseTx   = errors.New("transaction cannot span the central and a hospital database")
	ErrInvalidFieldName  = errors.New("invalid field name")
)

// ProcessInBatch retrieves and processes records in batches from the database based on the provided query parameters.
// It iterates through all matching records using pagination to avoid loading large datasets into memory.
// The processFunc is called on the records, allowing custom processing logic.
// Processing stops immediately if processFunc returns an error.
func ProcessInBatch[T Resource](
	ctx context.Context,
	repo Repo,
	baseQuery *Query,
	batchSize int,
	processFunc func([]*T) error,
) error {
	offset := 0

	for {
		var items []*T

		query := baseQuery.SetLimit(batchSize).SetOffset(offset)

		count, err := repo.List(ctx, *new(T), &items, *query)
		if err != nil {
			return err
		}

		err = processFunc(items)
		if err != nil {
			return err
		}

		offset += batchSize

		if offset >= count {
			break
		}
	}

	return nil
}
