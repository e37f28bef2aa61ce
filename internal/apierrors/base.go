package apierrors

import (
	"net/http"
)

const (
	InternalServerErr = "INTERNAL_SERVER_ERROR"
	JSONDecodeErr     = "JSON_DECODE_ERROR"
	ValidationErr     = "VALIDATION_ERROR"
	UnauthorizedErr   = "UNAUTHORIZED"
	ParamsErr         = "PARAMS_ERROR"
	NotFoundErr       = "NOT_FOUND"
)

// APIError is the body of every error answered by the API.
type APIError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Status    int            `json:"status"`
	RequestID string         `json:"requestId,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

type ErrorMessage struct {
	Error *APIError `json:"error"`
}

func (e *APIError) WithContext(context map[string]any) *APIError {
	c := *e
	c.Context = context

	return &c
}

func (e *APIError) DefaultError() *APIError {
	return InternalServerErrorMessage()
}

func InternalServerErrorMessage() *APIError {
	return &APIError{
		Code:    InternalServerErr,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
}

func JSONDecodeErrorMessage() *APIError {
	return &APIError{
		Code:    JSONDecodeErr,
		Message: "Can't decode JSON body",
		Status:  http.StatusBadRequest,
	}
}

func ParamsErrorMessage(message string) *APIError {
	return &APIError{
		Code:    ParamsErr,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

func UnauthorizedErrorMessage(message string) *APIError {
	return &APIError{
		Code:    UnauthorizedErr,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

func NotFoundErrorMessage() *APIError {
	return &APIError{
		Code:    NotFoundErr,
		Message: "No route matches the request",
		Status:  http.StatusNotFound,
	}
}
