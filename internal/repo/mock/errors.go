package mock

import "errors"

var (
	ErrRepoDelete = errors.New("failed to delete")
	ErrRepoFirst  = errors.New("failed to first")
	ErrRepoPatch  = errors.New("failed to patch")

	ErrResourceIsNil      = errors.New("resource is nil")
	ErrMustPointerToSlice = errors.New("must be a pointer to a slice")
	ErrMustBeSlice        = errors.New("must be a slice")
	ErrItemNotAssignable  = errors.New("item is not assignable")
	ErrUnsupportedOp      = errors.New("comparison not supported in memory")
)
