//go:build unit || !integration

package duxerrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestInvalidInput() {
	err := NewInvalidInput("price must be positive, got %s", "-1")
	suite.Equal("price must be positive, got -1", err.Error())
	suite.Equal(ErrorCodeInvalidInput, Code(err))
	suite.True(IsInvalidInput(err))
	suite.False(IsNotFound(err))
}

func (suite *ErrorTestSuite) TestNotFoundCarriesDetails() {
	err := NewServiceNotFound("svc-123")
	suite.Equal("svc-123", err.GetDetails()["id"])
	suite.Equal("service", err.GetDetails()["kind"])
	suite.True(IsNotFound(err))
}

func (suite *ErrorTestSuite) TestUnknownErrorCode() {
	suite.Equal(ErrorCodeUnknownError, Code(errors.New("boom")))
	suite.Equal("", Code(nil))
}

func (suite *ErrorTestSuite) TestErrorResponseRoundTrip() {
	err := NewAlreadySettled("escrow", "esc-1", "Released")
	resp := ErrorToErrorResponseObject(err)
	suite.Equal(ErrorCodeAlreadySettled, resp.Code)
	suite.Equal(err.GetMessage(), resp.Message)
	suite.Equal("esc-1", resp.Details["id"])
}

func (suite *ErrorTestSuite) TestHTTPStatusCodes() {
	suite.Equal(http.StatusBadRequest, HTTPStatusCode(NewInvalidInput("bad")))
	suite.Equal(http.StatusNotFound, HTTPStatusCode(NewTaskNotFound("t")))
	suite.Equal(http.StatusPaymentRequired, HTTPStatusCode(NewInsufficientFunds("did:duxnet:a", "USDC", "5")))
	suite.Equal(http.StatusOK, HTTPStatusCode(NewAlreadySettled("escrow", "e", "Refunded")))
	suite.Equal(http.StatusConflict, HTTPStatusCode(NewConflict("escrow", "e", "Open", "Released")))
	suite.Equal(http.StatusInternalServerError, HTTPStatusCode(errors.New("boom")))
}
