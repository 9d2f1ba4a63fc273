//go:build unit || !integration

package wallet

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/model"
)

const buyer = "did:duxnet:buyer"

func TestLockDebitsAvailableBalance(t *testing.T) {
	ctx := context.Background()
	ledger := NewInMemoryLedger()
	ledger.Deposit(buyer, model.CurrencyUSDC, decimal.RequireFromString("10.00"))

	err := ledger.Lock(ctx, buyer, model.CurrencyUSDC, decimal.RequireFromString("2.50"))
	require.NoError(t, err)

	balance, err := ledger.Balance(ctx, buyer, model.CurrencyUSDC)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.RequireFromString("7.50")), "got %s", balance)
}

func TestLockInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	ledger := NewInMemoryLedger()
	ledger.Deposit(buyer, model.CurrencyUSDC, decimal.RequireFromString("1.00"))

	err := ledger.Lock(ctx, buyer, model.CurrencyUSDC, decimal.RequireFromString("2.50"))
	require.True(t, duxerrors.IsInsufficientFunds(err))

	// a failed lock must not move any funds
	balance, err := ledger.Balance(ctx, buyer, model.CurrencyUSDC)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.RequireFromString("1.00")))
}

func TestBalancesAreKeyedByCurrency(t *testing.T) {
	ctx := context.Background()
	ledger := NewInMemoryLedger()
	ledger.Deposit(buyer, model.CurrencyBTC, decimal.NewFromInt(1))

	balance, err := ledger.Balance(ctx, buyer, model.CurrencyUSDC)
	require.NoError(t, err)
	require.True(t, balance.IsZero())
}

func TestActiveDIDsAreSorted(t *testing.T) {
	ctx := context.Background()
	ledger := NewInMemoryLedger()
	ledger.Deposit("did:duxnet:zeta", model.CurrencyDUX, decimal.NewFromInt(1))
	ledger.Deposit("did:duxnet:alpha", model.CurrencyDUX, decimal.NewFromInt(1))

	dids, err := ledger.ActiveDIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"did:duxnet:alpha", "did:duxnet:zeta"}, dids)
}
