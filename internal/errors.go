package internal

import "errors"

// AppError is the wire shape for error payloads.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func (e *AppError) Error() string { return e.Message }

// ValidationError marks malformed or out-of-range input (short duration,
// empty name). Surfaced as 400.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(msg string) error { return &ValidationError{Msg: msg} }

// NotFoundError marks an unknown user, group, or invite code. Surfaced as 404.
type NotFoundError struct{ Msg string }

func (e *NotFoundError) Error() string { return e.Msg }

func NewNotFoundError(msg string) error { return &NotFoundError{Msg: msg} }

// PermissionError marks an acting user lacking rights over a group.
// Surfaced as 403.
type PermissionError struct{ Msg string }

func (e *PermissionError) Error() string { return e.Msg }

func NewPermissionError(msg string) error { return &PermissionError{Msg: msg} }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
