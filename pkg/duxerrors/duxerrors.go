package duxerrors

import (
	"fmt"
)

// DuxNetErrorInterface is implemented by every coded error the node surfaces
// across its public boundary.
type DuxNetErrorInterface interface {
	Error() string

	GetCode() string
	GetMessage() string
	GetDetails() map[string]interface{}
}

// GenericError is the shared shape that the typed errors embed.
type GenericError struct {
	Code    string                 `json:"Code"`
	Message string                 `json:"Message"`
	Details map[string]interface{} `json:"Details"`
	Err     error                  `json:"-"`
}

func newGenericError(code, message string) GenericError {
	return GenericError{
		Code:    code,
		Message: message,
		Details: map[string]interface{}{},
		Err:     fmt.Errorf("%s", message),
	}
}

func (e *GenericError) Error() string {
	return e.Err.Error()
}

func (e *GenericError) GetCode() string {
	return e.Code
}

func (e *GenericError) GetMessage() string {
	return e.Message
}

func (e *GenericError) GetDetails() map[string]interface{} {
	return e.Details
}

// Code extracts the error code from any error. Non-coded errors report
// ErrorCodeUnknownError.
func Code(err error) string {
	if err == nil {
		return ""
	}
	if coded, ok := err.(DuxNetErrorInterface); ok {
		return coded.GetCode()
	}
	return ErrorCodeUnknownError
}

const ErrorCodeUnknownError = "error-unknown"
