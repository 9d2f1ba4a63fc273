package duxerrors

import (
	"fmt"
)

// NotFound covers unknown service, task and escrow ids. The entity kind and
// id are carried in the details for the API error response.
type NotFound struct {
	GenericError
}

func newNotFound(kind, id string) *NotFound {
	e := NotFound{newGenericError(ErrorCodeNotFound, fmt.Sprintf("%s not found. ID: %s", kind, id))}
	e.Details["kind"] = kind
	e.Details["id"] = id
	return &e
}

func NewServiceNotFound(id string) *NotFound {
	return newNotFound("service", id)
}

func NewTaskNotFound(id string) *NotFound {
	return newNotFound("task", id)
}

func NewEscrowNotFound(id string) *NotFound {
	return newNotFound("escrow", id)
}

func IsNotFound(err error) bool {
	return Code(err) == ErrorCodeNotFound
}

const ErrorCodeNotFound = "error-not-found"

var _ DuxNetErrorInterface = (*NotFound)(nil)
