package cache

import (
	"errors"
	"fmt"
)

// Sentinel errors covering the taxonomy a Tag's acquire/release/flush
// path can raise: a resource the guest named could not be located or
// built, a shader failed to compile from its GCN bytecode, a cached
// entry's stored value is incompatible with how the draw wants to use
// it, or the host graphics API itself rejected a call.
var (
	ErrUnresolvableResource  = errors.New("cache: resource could not be resolved")
	ErrCompileFailure        = errors.New("cache: shader compilation failed")
	ErrIncompatibleEntry     = errors.New("cache: cached entry is incompatible with the requested access")
	ErrHostAPIFailure        = errors.New("cache: host graphics API call failed")
	ErrTagClosed             = errors.New("cache: tag already released")
	ErrEntryEvicted          = errors.New("cache: entry was evicted while acquired")
)

// ValidationError reports a malformed request against a specific
// resource and field, such as a descriptor referencing an address
// outside any mapped range.
type ValidationError struct {
	Resource string
	Field    string
	Message  string
	Cause    error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("cache: %s.%s: %s", e.Resource, e.Field, e.Message)
	}
	return fmt.Sprintf("cache: %s: %s", e.Resource, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// NewValidationError reports message against resource/field with no
// wrapped cause.
func NewValidationError(resource, field, message string) *ValidationError {
	return &ValidationError{Resource: resource, Field: field, Message: message}
}

// NewValidationErrorf is NewValidationError with a formatted message.
func NewValidationErrorf(resource, field, format string, args ...any) *ValidationError {
	return &ValidationError{Resource: resource, Field: field, Message: fmt.Sprintf(format, args...)}
}
