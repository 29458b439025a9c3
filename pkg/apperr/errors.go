package apperr

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	Detail   string
}

func (e *NotFoundError) Error() string {
	if e.Detail != "" {
		return e.Resource + " not found: " + e.Detail
	}
	return e.Resource + " not found"
}

// ForbiddenError reports an authenticated but disallowed request.
// Reason is user-visible: callers need to distinguish "not a member"
// from "missing permission" from "self-action forbidden" to remediate.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

// ConflictError reports a duplicate creation attempt.
type ConflictError struct {
	Resource string
	Detail   string
}

func (e *ConflictError) Error() string {
	if e.Detail != "" {
		return e.Resource + " already exists: " + e.Detail
	}
	return e.Resource + " already exists"
}

// NotFound creates a NotFoundError for a resource.
func NotFound(resource string, detailFmt string, args ...interface{}) error {
	return &NotFoundError{Resource: resource, Detail: fmt.Sprintf(detailFmt, args...)}
}

// Forbidden creates a ForbiddenError with a user-visible reason.
func Forbidden(reasonFmt string, args ...interface{}) error {
	return &ForbiddenError{Reason: fmt.Sprintf(reasonFmt, args...)}
}

// Conflict creates a ConflictError for a resource.
func Conflict(resource string, detailFmt string, args ...interface{}) error {
	return &ConflictError{Resource: resource, Detail: fmt.Sprintf(detailFmt, args...)}
}

// IsNotFound checks if an error is (or wraps) a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsForbidden checks if an error is (or wraps) a ForbiddenError
func IsForbidden(err error) bool {
	var fb *ForbiddenError
	return errors.As(err, &fb)
}

// IsConflict checks if an error is (or wraps) a ConflictError
func IsConflict(err error) bool {
	var cf *ConflictError
	return errors.As(err, &cf)
}
