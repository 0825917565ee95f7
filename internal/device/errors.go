package device

import "errors"

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("device not found")
	ErrPersistence = errors.New("persistence failed")
)
