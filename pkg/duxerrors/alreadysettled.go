package duxerrors

import (
	"fmt"
)

// AlreadySettled reports an idempotent no-op: the entity reached a terminal
// state before this call, so the call changed nothing.
type AlreadySettled struct {
	GenericError
}

func NewAlreadySettled(kind, id, state string) *AlreadySettled {
	e := AlreadySettled{newGenericError(
		ErrorCodeAlreadySettled,
		fmt.Sprintf("%s %s already settled as %s", kind, id, state))}
	e.Details["kind"] = kind
	e.Details["id"] = id
	e.Details["state"] = state
	return &e
}

func IsAlreadySettled(err error) bool {
	return Code(err) == ErrorCodeAlreadySettled
}

const ErrorCodeAlreadySettled = "error-already-settled"

var _ DuxNetErrorInterface = (*AlreadySettled)(nil)
