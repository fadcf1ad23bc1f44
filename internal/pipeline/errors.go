package pipeline

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a bulk operation is triggered while it is running.
var ErrBusy = errors.New("operation already running")

// ErrNotFound is returned when a listing or application does not exist.
var ErrNotFound = errors.New("not found")

// NotFoundError names the missing resource and matches ErrNotFound.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// Is lets errors.Is match ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConfigError reports a feature used without its credentials.
type ConfigError struct {
	Cause error
}

func (e *ConfigError) Error() string {
	return e.Cause.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ValidationError reports a request that cannot be carried out as given.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}
