package fund

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/duxnet-project/duxnet/pkg/model"
	"github.com/duxnet-project/duxnet/pkg/wallet"
)

// DefaultFeeRate is the cut of every escrow release paid into the community
// fund.
var DefaultFeeRate = decimal.RequireFromString("0.05")

// DefaultDistributionInterval is how often the fund pays out to active
// identities.
const DefaultDistributionInterval = 12 * time.Hour

// Balance is the fund's position in one currency.
type Balance struct {
	Currency          model.Currency  `json:"currency"`
	Balance           decimal.Decimal `json:"balance"`
	LastDistribution  time.Time       `json:"last_distribution"`
	TotalDistributed  decimal.Decimal `json:"total_distributed"`
	DistributionCount int             `json:"distribution_count"`
}

// Distribution records one fan-out of a currency's balance to active users.
type Distribution struct {
	Currency      model.Currency  `json:"currency"`
	AmountPerUser decimal.Decimal `json:"amount_per_user"`
	TotalUsers    int             `json:"total_users"`
	DistributedAt time.Time       `json:"distributed_at"`
}

// Fund accumulates settlement fees per currency and periodically splits each
// balance equally across the identities known to the wallet.
type Fund struct {
	wallet   wallet.Wallet
	clock    clock.Clock
	feeRate  decimal.Decimal
	interval time.Duration

	balances map[model.Currency]*Balance
	mtx      sync.Mutex
}

type Params struct {
	Wallet               wallet.Wallet
	Clock                clock.Clock
	FeeRate              decimal.Decimal
	DistributionInterval time.Duration
}

func NewFund(params Params) *Fund {
	if params.Clock == nil {
		params.Clock = clock.New()
	}
	if params.FeeRate.IsZero() {
		params.FeeRate = DefaultFeeRate
	}
	if params.DistributionInterval == 0 {
		params.DistributionInterval = DefaultDistributionInterval
	}
	f := &Fund{
		wallet:   params.Wallet,
		clock:    params.Clock,
		feeRate:  params.FeeRate,
		interval: params.DistributionInterval,
		balances: map[model.Currency]*Balance{},
	}
	for _, currency := range model.SupportedCurrencies() {
		f.balances[currency] = &Balance{
			Currency:         currency,
			Balance:          decimal.Zero,
			TotalDistributed: decimal.Zero,
		}
	}
	return f
}

// FeeFor returns the fund's cut of a settlement amount.
func (f *Fund) FeeFor(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(f.feeRate)
}

// AddFee credits a settlement fee to the fund.
func (f *Fund) AddFee(ctx context.Context, currency model.Currency, amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	f.mtx.Lock()
	defer f.mtx.Unlock()
	balance := f.balances[currency]
	balance.Balance = balance.Balance.Add(amount)
	log.Ctx(ctx).Debug().
		Str("Currency", currency.String()).
		Str("Fee", amount.String()).
		Str("Balance", balance.Balance.String()).
		Msg("added settlement fee to community fund")
}

// Balances returns a copy of the fund's positions.
func (f *Fund) Balances() []Balance {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	out := make([]Balance, 0, len(f.balances))
	for _, currency := range model.SupportedCurrencies() {
		out = append(out, *f.balances[currency])
	}
	return out
}

// Distribute splits a currency's balance equally across the wallet's active
// identities. A distribution that would give each user nothing is skipped.
func (f *Fund) Distribute(ctx context.Context, currency model.Currency) (Distribution, error) {
	dids, err := f.wallet.ActiveDIDs(ctx)
	if err != nil {
		return Distribution{}, err
	}
	if len(dids) == 0 {
		return Distribution{}, nil
	}

	f.mtx.Lock()
	balance := f.balances[currency]
	perUser := balance.Balance.Div(decimal.NewFromInt(int64(len(dids)))).Truncate(8)
	if !perUser.IsPositive() {
		f.mtx.Unlock()
		return Distribution{}, nil
	}
	total := perUser.Mul(decimal.NewFromInt(int64(len(dids))))
	now := f.clock.Now().UTC()
	balance.Balance = balance.Balance.Sub(total)
	balance.TotalDistributed = balance.TotalDistributed.Add(total)
	balance.DistributionCount++
	balance.LastDistribution = now
	f.mtx.Unlock()

	for _, did := range dids {
		if err := f.wallet.Credit(ctx, did, currency, perUser); err != nil {
			// funds already left the pool; log and keep crediting the rest
			log.Ctx(ctx).Error().Err(err).
				Str("DID", did).
				Str("Currency", currency.String()).
				Msg("failed to credit community fund distribution")
		}
	}

	log.Ctx(ctx).Info().
		Str("Currency", currency.String()).
		Str("AmountPerUser", perUser.String()).
		Int("Users", len(dids)).
		Msg("distributed community fund")

	return Distribution{
		Currency:      currency,
		AmountPerUser: perUser,
		TotalUsers:    len(dids),
		DistributedAt: now,
	}, nil
}

// Run drives periodic distributions until the context is canceled.
func (f *Fund) Run(ctx context.Context) {
	ticker := f.clock.Ticker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, currency := range model.SupportedCurrencies() {
				if _, err := f.Distribute(ctx, currency); err != nil {
					log.Ctx(ctx).Error().Err(err).
						Str("Currency", currency.String()).
						Msg("community fund distribution failed")
				}
			}
		}
	}
}
