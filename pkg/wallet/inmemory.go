package wallet

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/model"
)

// InMemoryLedger is a process-local wallet used by the devstack and tests.
// Production deployments wire a client for the real custody service instead.
type InMemoryLedger struct {
	balances map[string]map[model.Currency]decimal.Decimal
	mtx      sync.RWMutex
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		balances: map[string]map[model.Currency]decimal.Decimal{},
	}
}

// Deposit seeds a balance. Test and devstack helper, not part of the Wallet
// interface.
func (l *InMemoryLedger) Deposit(did string, currency model.Currency, amount decimal.Decimal) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.add(did, currency, amount)
}

func (l *InMemoryLedger) add(did string, currency model.Currency, amount decimal.Decimal) {
	if _, ok := l.balances[did]; !ok {
		l.balances[did] = map[model.Currency]decimal.Decimal{}
	}
	l.balances[did][currency] = l.balances[did][currency].Add(amount)
}

func (l *InMemoryLedger) Balance(ctx context.Context, did string, currency model.Currency) (decimal.Decimal, error) {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.balances[did][currency], nil
}

func (l *InMemoryLedger) Lock(ctx context.Context, did string, currency model.Currency, amount decimal.Decimal) error {
	return l.Debit(ctx, did, currency, amount)
}

func (l *InMemoryLedger) Credit(ctx context.Context, did string, currency model.Currency, amount decimal.Decimal) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.add(did, currency, amount)
	return nil
}

func (l *InMemoryLedger) Debit(ctx context.Context, did string, currency model.Currency, amount decimal.Decimal) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	balance := l.balances[did][currency]
	if balance.LessThan(amount) {
		return duxerrors.NewInsufficientFunds(did, currency.String(), amount.String())
	}
	l.balances[did][currency] = balance.Sub(amount)
	return nil
}

func (l *InMemoryLedger) ActiveDIDs(ctx context.Context) ([]string, error) {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	dids := make([]string, 0, len(l.balances))
	for did := range l.balances {
		dids = append(dids, did)
	}
	sort.Strings(dids)
	return dids, nil
}

var _ Wallet = (*InMemoryLedger)(nil)
