package core

import (
	"errors"
	"fmt"
)

// ErrCancelled is reported by Handle.Err for tasks removed by Cancel or
// CancelAll before their body finished.
var ErrCancelled = errors.New("task cancelled")

// PanicError wraps a panic recovered from a task body so that the failure
// can be returned as an error by Handle.Err and by the sync layer's Await.
type PanicError struct {
	// Value is the recovered panic value.
	Value any

	// Stack is the stack trace captured at the panic site.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error, so that
// errors.Is/As work through a PanicError.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
