package catalog

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is().
// These are generic errors that can be wrapped with additional context.
var (
	// ErrNotFound indicates the referenced product, category, or order
	// identity does not exist. Maps to a 404-equivalent at the transport.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed input: unknown enum value,
	// non-positive quantity, conflicting filter combination. 400-equivalent.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidTransition indicates a status change the state machine
	// rejects. The wrapping message names both states. 400-equivalent.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInsufficientStock indicates an inventory debit that would drive
	// the stored quantity negative. The adjustment is rejected in full.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStorageUnavailable indicates a collaborator store failure. The
	// core surfaces it unchanged; retrying is the transport's decision.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Error kinds identify the entity family an error relates to.
const (
	KindProduct  = "product"
	KindCategory = "category"
	KindOrder    = "order"
	KindStorage  = "storage"
	KindCache    = "cache"
)

// Error provides structured error information with context.
// It implements the error interface and supports error wrapping.
type Error struct {
	Op      string // Operation that failed (e.g., "order.Create")
	Kind    string // Entity kind (e.g., "order", "product")
	ID      string // Optional ID of the entity involved
	Message string // Human-readable message
	Err     error  // Underlying error for wrapping
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Message != "":
		if e.ID != "" {
			return fmt.Sprintf("%s [%s %s]: %s", e.Op, e.Kind, e.ID, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Op != "" && e.Err != nil:
		if e.ID != "" {
			return fmt.Sprintf("%s [%s %s]: %v", e.Op, e.Kind, e.ID, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// NotFound builds a NotFound error for the given entity.
func NotFound(op, kind string, id int64) *Error {
	return &Error{
		Op:      op,
		Kind:    kind,
		ID:      fmt.Sprintf("%d", id),
		Message: fmt.Sprintf("%s %d not found", kind, id),
		Err:     ErrNotFound,
	}
}

// InvalidArgument builds an InvalidArgument error with a formatted message.
func InvalidArgument(op, kind, format string, args ...interface{}) *Error {
	return &Error{
		Op:      op,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     ErrInvalidArgument,
	}
}

// StorageError wraps a collaborator store failure. NotFound and domain
// rejections pass through untouched so errors.Is checks keep working.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInsufficientStock) {
		return err
	}
	return &Error{
		Op:      op,
		Kind:    KindStorage,
		Message: err.Error(),
		Err:     fmt.Errorf("%w: %v", ErrStorageUnavailable, err),
	}
}
