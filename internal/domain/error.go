package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification surfaced to callers
// (webhook receiver, ops tooling). Kinds are stable wire values.
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindNotFound        ErrorKind = "not_found"
	KindOrphanedPayment ErrorKind = "orphaned_payment"
	KindConflict        ErrorKind = "conflict"
)

// Error is a typed workflow error. Partial failure is always an inspectable
// value: Field names the offending metadata field for validation errors,
// Entity/EntityID identify the missing row for not-found errors.
type Error struct {
	Kind     ErrorKind
	Message  string
	Field    string
	Entity   string
	EntityID string
}

func (e *Error) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s (field=%s)", e.Kind, e.Message, e.Field)
	case e.EntityID != "":
		return fmt.Sprintf("%s: %s (%s=%s)", e.Kind, e.Message, e.Entity, e.EntityID)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Is matches against the kind sentinels below so callers can use errors.Is
// without caring about field/entity context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Kind sentinels for errors.Is checks.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNotFoundKind    = &Error{Kind: KindNotFound}
	ErrOrphanedPayment = &Error{Kind: KindOrphanedPayment}
	ErrConflict        = &Error{Kind: KindConflict}
)

func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, EntityID: id, Message: entity + " not found"}
}

func NewOrphanedPaymentError(paymentID, companyID string) *Error {
	return &Error{
		Kind:     KindOrphanedPayment,
		Entity:   "company",
		EntityID: companyID,
		Message:  fmt.Sprintf("payment %s references a deleted company", paymentID),
	}
}

func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// ErrKind extracts the kind from any error in the chain; empty if untyped.
func ErrKind(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

var (
	// Infrastructure-level errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid transaction execution context")
)
