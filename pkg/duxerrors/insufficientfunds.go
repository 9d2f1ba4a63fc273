package duxerrors

import (
	"fmt"
)

type InsufficientFunds struct {
	GenericError
}

func NewInsufficientFunds(did, currency, amount string) *InsufficientFunds {
	e := InsufficientFunds{newGenericError(
		ErrorCodeInsufficientFunds,
		fmt.Sprintf("insufficient %s balance for %s: need %s", currency, did, amount))}
	e.Details["did"] = did
	e.Details["currency"] = currency
	e.Details["amount"] = amount
	return &e
}

func IsInsufficientFunds(err error) bool {
	return Code(err) == ErrorCodeInsufficientFunds
}

const ErrorCodeInsufficientFunds = "error-insufficient-funds"

var _ DuxNetErrorInterface = (*InsufficientFunds)(nil)
