// Package errors provides the error taxonomy shared by the cache management
// service, its collaborators and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
)

// InvalidArgumentError reports a caller-supplied value that failed local
// validation. It is raised before any downstream call is made.
type InvalidArgumentError struct {
	Argument string
	Value    string
	Reason   string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Argument, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q", e.Argument, e.Value)
}

// Is matches any InvalidArgumentError, including ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	_, ok := target.(*InvalidArgumentError)
	return ok
}

// NotFoundError reports a resource the downstream collaborator does not hold.
type NotFoundError struct {
	Resource string
	Key      string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// Is matches any NotFoundError, including ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// NewInvalidArgument creates a new InvalidArgumentError.
func NewInvalidArgument(argument, value, reason string) error {
	return &InvalidArgumentError{
		Argument: argument,
		Value:    value,
		Reason:   reason,
	}
}

// NewNotFound creates a new NotFoundError.
func NewNotFound(resource, key string) error {
	return &NotFoundError{
		Resource: resource,
		Key:      key,
	}
}

// IsInvalidArgument checks if an error is, or wraps, an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	if err == nil {
		return false
	}
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// IsNotFound checks if an error is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var target *NotFoundError
	return errors.As(err, &target)
}

// Sentinel errors usable with errors.Is.
var (
	ErrInvalidArgument = &InvalidArgumentError{Argument: "argument"}
	ErrNotFound        = &NotFoundError{Resource: "resource"}
)
