package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/duxnet-project/duxnet/pkg/model"
)

// Wallet is the external custody collaborator the escrow engine and
// community fund coordinate with. Implementations must make Lock, Credit and
// Debit atomic per call.
type Wallet interface {
	// Balance returns the available balance of a DID for a currency.
	Balance(ctx context.Context, did string, currency model.Currency) (decimal.Decimal, error)

	// Lock debits the available balance by amount, failing with
	// InsufficientFunds when the balance does not cover it. The caller is
	// responsible for eventually crediting the funds back out.
	Lock(ctx context.Context, did string, currency model.Currency, amount decimal.Decimal) error

	// Credit adds amount to the available balance.
	Credit(ctx context.Context, did string, currency model.Currency, amount decimal.Decimal) error

	// Debit removes amount from the available balance, failing with
	// InsufficientFunds when it does not cover the amount.
	Debit(ctx context.Context, did string, currency model.Currency, amount decimal.Decimal) error

	// ActiveDIDs lists identities known to the wallet, used by the
	// community fund to fan out distributions.
	ActiveDIDs(ctx context.Context) ([]string, error)
}
