package duxerrors

import (
	"fmt"
)

type InvalidInput struct {
	GenericError
}

func NewInvalidInput(format string, args ...interface{}) *InvalidInput {
	e := InvalidInput{newGenericError(ErrorCodeInvalidInput, fmt.Sprintf(format, args...))}
	return &e
}

func IsInvalidInput(err error) bool {
	return Code(err) == ErrorCodeInvalidInput
}

const ErrorCodeInvalidInput = "error-invalid-input"

var _ DuxNetErrorInterface = (*InvalidInput)(nil)
