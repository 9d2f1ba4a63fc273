package duxerrors

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorResponse is the JSON shape errors take when they cross the HTTP
// boundary.
type ErrorResponse struct {
	Code    string                 `json:"Code"`
	Message string                 `json:"Message"`
	Details map[string]interface{} `json:"Details"`
	Err     string                 `json:"Err"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

func (e *ErrorResponse) GetCode() string {
	return e.Code
}

func (e *ErrorResponse) GetMessage() string {
	return e.Message
}

func (e *ErrorResponse) GetDetails() map[string]interface{} {
	return e.Details
}

func ErrorToErrorResponse(err error) string {
	e := ErrorToErrorResponseObject(err)
	str, marshalError := json.Marshal(e)
	if marshalError != nil {
		msg := "error converting DuxNetError to JSON"
		log.Error().Err(marshalError).Msg(msg)
		str = append(str, []byte("\n"+msg)...)
	}
	return string(str)
}

func ErrorToErrorResponseObject(err error) *ErrorResponse {
	e := &ErrorResponse{}
	if err == nil {
		return e
	}

	if coded, ok := err.(DuxNetErrorInterface); ok {
		e = &ErrorResponse{
			Code:    coded.GetCode(),
			Message: coded.GetMessage(),
			Details: coded.GetDetails(),
			Err:     coded.Error(),
		}
	} else {
		// generic error, structure it as an ErrorResponse with an unknown code
		e.Code = ErrorCodeUnknownError
		e.Message = err.Error()
		e.Details = map[string]interface{}{}
		e.Err = err.Error()
	}

	return e
}

// HTTPStatusCode maps the error taxonomy onto HTTP statuses for the public
// API. AlreadySettled deliberately maps to 200: it is a reported no-op, not
// an error condition for the caller.
func HTTPStatusCode(err error) int {
	switch Code(err) {
	case ErrorCodeInvalidInput:
		return http.StatusBadRequest
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeInsufficientFunds:
		return http.StatusPaymentRequired
	case ErrorCodeAlreadySettled:
		return http.StatusOK
	case ErrorCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
