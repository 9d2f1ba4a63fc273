package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is an advertised unit of work offered by a provider identity at a
// price. Services are immutable once registered, except for the reputation
// snapshot which is refreshed from the ledger, and the Active flag which is
// cleared on deactivation. Services are never deleted.
type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	Price    decimal.Decimal `json:"price"`
	Currency Currency        `json:"currency"`

	// ProviderDID names the identity offering the service. DIDs are opaque
	// strings owned by the external identity system.
	ProviderDID string `json:"provider_did"`

	// ReputationScore is a read-only snapshot of the provider's score at
	// registration or last refresh.
	ReputationScore float64 `json:"reputation_score"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
