package apierrors

import (
	"errors"
	"net/http"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/repo"
)

const (
	ResourceNotFound = "RESOURCE_NOT_FOUND"
	UniqueError      = "UNIQUE_ERROR"
	BadRequest       = "BAD_REQUEST"
	GetResource      = "GET_RESOURCE"
)

var ErrUnknownProperty = errors.New("unknown property")

var defaultMapper = []errs.Mapping[*APIError]{
	{
		Chain: []error{repo.ErrUniqueConstraint},
		Exposed: &APIError{
			Code:    UniqueError,
			Message: "Resource with such a unique value already exists",
			Status:  http.StatusConflict,
		},
	},
	{
		Chain: []error{repo.ErrNotFound},
		Exposed: &APIError{
			Code:    ResourceNotFound,
			Message: "The requested resource was not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		Chain: []error{repo.ErrInvalidUUID},
		Exposed: &APIError{
			Code:    BadRequest,
			Message: "Invalid uuid provided",
			Status:  http.StatusBadRequest,
		},
	},
	{
		Chain: []error{repo.ErrGetResource},
		Exposed: &APIError{
			Code:    GetResource,
			Message: "The requested resource could not be read",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		Chain: []error{repo.ErrCrossDatabaseTx},
		Exposed: &APIError{
			Code:    "CROSS_DATABASE_TRANSACTION",
			Message: "The change spans the central and a hospital database",
			Status:  http.StatusInternalServerError,
		},
	},
	{
		Chain: []error{ErrUnknownProperty},
		Exposed: &APIError{
			Code:    "UNKNOWN_PROPERTY",
			Message: "Unknown property",
			Status:  http.StatusBadRequest,
		},
	},
}
