package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentifier is returned when a programme code fails the safe
	// identifier pattern. Nothing that fails this check is ever interpolated
	// into SQL.
	ErrInvalidIdentifier = errors.New("invalid programme identifier")

	// ErrUnknownEntity is returned when a logical entity name is not part of
	// the fixed registry.
	ErrUnknownEntity = errors.New("unknown logical entity")
)

// OpError wraps a failed schema lifecycle operation with enough context for
// the admin caller: programme code, operation name and the underlying
// database error.
type OpError struct {
	Programme string
	Op        string
	Err       error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("schema operation %s failed for programme %q: %v", e.Op, e.Programme, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opError(programme, op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Programme: programme, Op: op, Err: err}
}
