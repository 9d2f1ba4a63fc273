package duxerrors

import (
	"fmt"
)

// Conflict reports the loser of a concurrent state transition race. The
// caller saw a non-terminal state but another writer moved the entity first.
type Conflict struct {
	GenericError
}

func NewConflict(kind, id, from, to string) *Conflict {
	e := Conflict{newGenericError(
		ErrorCodeConflict,
		fmt.Sprintf("%s %s is not in state %s, cannot move to %s", kind, id, from, to))}
	e.Details["kind"] = kind
	e.Details["id"] = id
	e.Details["from"] = from
	e.Details["to"] = to
	return &e
}

func IsConflict(err error) bool {
	return Code(err) == ErrorCodeConflict
}

const ErrorCodeConflict = "error-conflict"

var _ DuxNetErrorInterface = (*Conflict)(nil)
