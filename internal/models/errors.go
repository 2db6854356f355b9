package models

import "errors"

var (
	// no authenticated user id is present; blocks every write
	ErrAuthRequired = errors.New("authentication required")
	// form input or transcript rejected; recoverable by the user
	ErrValidationFailed = errors.New("validation failed")
	// a store or AI gateway call failed
	ErrRemoteOperationFailed = errors.New("remote operation failed")
	// caller does not own the record
	ErrForbidden = errors.New("forbidden")
)
