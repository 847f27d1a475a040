package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type OpKind string

const (
	OpAdd            OpKind = "add"
	OpUpdateQuantity OpKind = "update_quantity"
	OpDelete         OpKind = "delete"
	OpClear          OpKind = "clear"
	OpReload         OpKind = "reload"
)

// Action is the user-facing phrase for the operation.
func (k OpKind) Action() string {
	switch k {
	case OpAdd:
		return "add to cart"
	case OpUpdateQuantity:
		return "update cart quantity"
	case OpDelete:
		return "remove from cart"
	case OpClear:
		return "clear cart"
	case OpReload:
		return "reload cart"
	default:
		return string(k)
	}
}

type OpState int

const (
	OpIdle OpState = iota
	OpRequesting
	OpCommitted
	OpFailed
)

func (s OpState) String() string {
	switch s {
	case OpIdle:
		return "idle"
	case OpRequesting:
		return "requesting"
	case OpCommitted:
		return "committed"
	case OpFailed:
		return "failed"
	default:
		return fmt.Sprintf("OpState(%d)", int(s))
	}
}

// CanTransition reports whether next is a legal successor of s.
func (s OpState) CanTransition(next OpState) bool {
	switch s {
	case OpIdle:
		return next == OpRequesting
	case OpRequesting:
		return next == OpCommitted || next == OpFailed
	default:
		return false
	}
}

func (s OpState) Terminal() bool {
	return s == OpCommitted || s == OpFailed
}

// Operation is one invocation of a cart operation.
type Operation struct {
	ID        uuid.UUID
	Kind      OpKind
	ProductID string
	State     OpState
	Err       error
}

func NewOperation(kind OpKind, productID string) Operation {
	return Operation{
		ID:        uuid.New(),
		Kind:      kind,
		ProductID: productID,
		State:     OpIdle,
	}
}

// Transition moves the operation to next. Illegal transitions leave it untouched.
func (o *Operation) Transition(next OpState) error {
	if !o.State.CanTransition(next) {
		return fmt.Errorf("operation %s: illegal transition %s -> %s", o.Kind, o.State, next)
	}
	o.State = next
	return nil
}
