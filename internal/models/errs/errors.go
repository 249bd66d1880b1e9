package errs

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrDataConflict       = errors.New("data conflict")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrRateLimit          = errors.New("rate limit")
	ErrContentType        = errors.New("invalid content type")
	ErrRequiredBodyParam  = errors.New("required body param")
	ErrRequiredQueryParam = errors.New("required query param")
)

// Type just for marshalling purpose.
// Should only be used immediately before marshalling.
type JSON struct {
	Error string `json:"error"`
}

// Let users know which required request body parameter is not provided.
type RequiredJSONBodyParamError struct {
	ParamName string
}

func (e *RequiredJSONBodyParamError) Error() string {
	return fmt.Sprintf("JSON body argument %q is required, but not found", e.ParamName)
}

func (e *RequiredJSONBodyParamError) Unwrap() error {
	return ErrRequiredBodyParam
}

// Let users know which required query parameter is not provided.
type RequiredQueryParamError struct {
	ParamName string
}

func (e *RequiredQueryParamError) Error() string {
	return fmt.Sprintf("query param %q is required, but not found", e.ParamName)
}

func (e *RequiredQueryParamError) Unwrap() error {
	return ErrRequiredQueryParam
}

// Provides details at which field unique violation has occurred.
type AlreadyExistsError struct {
	FieldName string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("record with field %q already exists", e.FieldName)
}

func (e *AlreadyExistsError) Unwrap() error {
	return ErrAlreadyExists
}

// Reports a reference to a record that does not exist.
type UnknownReferenceError struct {
	FieldName string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("referenced record %q does not exist", e.FieldName)
}

func (e *UnknownReferenceError) Unwrap() error {
	return ErrInvalidRequest
}
