package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EscrowState is the settlement state of an escrow.
type EscrowState int

const (
	EscrowStateOpen EscrowState = iota // must be first
	EscrowStateReleased
	EscrowStateRefunded
	EscrowStateDisputed
)

func (s EscrowState) String() string {
	return [...]string{"Open", "Released", "Refunded", "Disputed"}[s]
}

// IsTerminal returns true once funds have moved. Disputed escrows still hold
// funds and can be settled either way by manual resolution.
func (s EscrowState) IsTerminal() bool {
	return s == EscrowStateReleased || s == EscrowStateRefunded
}

// CanTransitionTo enforces that exactly one of release/refund ever moves an
// escrow out of custody.
func (s EscrowState) CanTransitionTo(next EscrowState) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case EscrowStateOpen:
		return next == EscrowStateReleased || next == EscrowStateRefunded || next == EscrowStateDisputed
	case EscrowStateDisputed:
		return next == EscrowStateReleased || next == EscrowStateRefunded
	}
	return false
}

// Escrow is a custodial fund hold pending service completion. The amount is
// debited from the buyer's available balance when the escrow opens and stays
// locked for the escrow's lifetime.
type Escrow struct {
	ID        string `json:"id"`
	ServiceID string `json:"service_id"`

	BuyerDID  string `json:"buyer_did"`
	SellerDID string `json:"seller_did"`

	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`

	State EscrowState `json:"state"`

	CreatedAt time.Time `json:"created_at"`
	SettledAt time.Time `json:"settled_at,omitempty"`
}
