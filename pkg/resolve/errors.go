package resolve

import (
	"errors"
	"fmt"

	"github.com/usbtap/usbtap-go/pkg/devstack"
)

// ErrProtocolViolation means the device stack broke its own query contract,
// e.g. a successful relations query with no objects, or a size probe that
// reported plain success for a property that never fits an empty buffer.
var ErrProtocolViolation = errors.New("device stack violated its query contract")

// StatusError reports a non-success completion status from the device
// stack. The status is carried opaquely; this layer never reinterprets it.
type StatusError struct {
	// Op names the operation that failed.
	Op string

	// Status is the completion status the stack reported.
	Status devstack.Status
}

// Error returns the operation and status.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

// statusErr wraps a stack completion status as an error.
func statusErr(op string, status devstack.Status) error {
	return &StatusError{Op: op, Status: status}
}
