//go:build unit || !integration

package reputation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const seller = "did:duxnet:seller"

func TestUnknownDIDReportsBaseline(t *testing.T) {
	ledger := NewLedger()
	require.Equal(t, BaselineScore, ledger.Get(context.Background(), "did:duxnet:nobody"))
}

func TestAdjustClampsToBounds(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	require.NoError(t, ledger.Adjust(ctx, seller, +10))
	require.Equal(t, MaxScore, ledger.Get(ctx, seller))

	require.NoError(t, ledger.Adjust(ctx, seller, -100))
	require.Equal(t, MinScore, ledger.Get(ctx, seller))
}

func TestAdjustRequiresDID(t *testing.T) {
	require.Error(t, NewLedger().Adjust(context.Background(), "", 1))
}

func TestConcurrentAdjustmentsAreNotLost(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	// pull the score to the floor so additions are not clamped
	require.NoError(t, ledger.Adjust(ctx, seller, -BaselineScore))

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ledger.Adjust(ctx, seller, 0.01)
		}()
	}
	wg.Wait()

	require.InDelta(t, 0.5, ledger.Get(ctx, seller), 1e-9)
}
