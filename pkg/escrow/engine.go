package escrow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/fund"
	"github.com/duxnet-project/duxnet/pkg/localdb"
	"github.com/duxnet-project/duxnet/pkg/model"
	"github.com/duxnet-project/duxnet/pkg/reputation"
	"github.com/duxnet-project/duxnet/pkg/wallet"
)

// reputation deltas applied to the seller on settlement
const (
	releaseReputationDelta = +0.10
	refundReputationDelta  = -0.25
)

var escrowsSettledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "duxnet_escrows_settled_total",
	Help: "Number of escrows settled, by outcome.",
}, []string{"outcome"})

// Engine holds funds in custody for the lifetime of an escrow and settles
// them exactly once. The settlement compare-and-swap in the store is the
// source of truth; funds move only after winning it, and the reputation
// update that follows is asynchronous and never rolls a settlement back.
type Engine struct {
	store  localdb.LocalDB
	wallet wallet.Wallet
	fund   *fund.Fund
	ledger *reputation.Ledger
}

type Params struct {
	Store  localdb.LocalDB
	Wallet wallet.Wallet
	Fund   *fund.Fund
	Ledger *reputation.Ledger
}

func NewEngine(params Params) *Engine {
	return &Engine{
		store:  params.Store,
		wallet: params.Wallet,
		fund:   params.Fund,
		ledger: params.Ledger,
	}
}

type CreateRequest struct {
	ServiceID string          `json:"service_id"`
	BuyerDID  string          `json:"buyer_did"`
	SellerDID string          `json:"seller_did"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  model.Currency  `json:"currency"`
}

func (r CreateRequest) validate() error {
	var result *multierror.Error
	if !r.Amount.IsPositive() {
		result = multierror.Append(result, duxerrors.NewInvalidInput("escrow amount must be positive, got %s", r.Amount))
	}
	if !r.Currency.IsSupported() {
		result = multierror.Append(result, duxerrors.NewInvalidInput("unsupported currency: %q", r.Currency))
	}
	if strings.TrimSpace(r.BuyerDID) == "" {
		result = multierror.Append(result, duxerrors.NewInvalidInput("buyer DID is required"))
	}
	if strings.TrimSpace(r.SellerDID) == "" {
		result = multierror.Append(result, duxerrors.NewInvalidInput("seller DID is required"))
	}
	if err := result.ErrorOrNil(); err != nil {
		return duxerrors.NewInvalidInput("%s", err.Error())
	}
	return nil
}

// Create opens an escrow, debiting the buyer's available balance. The debit
// happens before the escrow is persisted so an insufficient balance can
// never leave a half-open escrow behind.
func (e *Engine) Create(ctx context.Context, request CreateRequest) (model.Escrow, error) {
	if err := request.validate(); err != nil {
		return model.Escrow{}, err
	}
	if _, err := e.store.GetService(ctx, request.ServiceID); err != nil {
		return model.Escrow{}, err
	}

	if err := e.wallet.Lock(ctx, request.BuyerDID, request.Currency, request.Amount); err != nil {
		return model.Escrow{}, err
	}

	escrow := model.Escrow{
		ID:        uuid.NewString(),
		ServiceID: request.ServiceID,
		BuyerDID:  request.BuyerDID,
		SellerDID: request.SellerDID,
		Amount:    request.Amount,
		Currency:  request.Currency,
		State:     model.EscrowStateOpen,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.AddEscrow(ctx, escrow); err != nil {
		// hand the locked funds back, the escrow never existed
		if creditErr := e.wallet.Credit(ctx, request.BuyerDID, request.Currency, request.Amount); creditErr != nil {
			log.Ctx(ctx).Error().Err(creditErr).
				Str("BuyerDID", request.BuyerDID).
				Msg("failed to return locked funds after escrow persist failure")
		}
		return model.Escrow{}, err
	}

	log.Ctx(ctx).Debug().
		Str("EscrowID", escrow.ID).
		Str("Amount", escrow.Amount.String()).
		Str("Currency", escrow.Currency.String()).
		Msg("opened escrow")
	return escrow, nil
}

// Get resolves an escrow by id.
func (e *Engine) Get(ctx context.Context, id string) (model.Escrow, error) {
	return e.store.GetEscrow(ctx, id)
}

// Release settles an escrow in the seller's favour: the seller is credited
// the amount minus the community fund fee. Calling Release on an already
// settled escrow is an AlreadySettled no-op, never a double credit.
func (e *Engine) Release(ctx context.Context, id string) error {
	return e.settle(ctx, id, model.EscrowStateReleased)
}

// Refund settles an escrow in the buyer's favour, crediting back the full
// amount. Idempotence matches Release.
func (e *Engine) Refund(ctx context.Context, id string) error {
	return e.settle(ctx, id, model.EscrowStateRefunded)
}

// Dispute flags an open escrow for manual resolution. Funds stay locked and
// a later Release or Refund settles it.
func (e *Engine) Dispute(ctx context.Context, id string) error {
	escrow, err := e.store.GetEscrow(ctx, id)
	if err != nil {
		return err
	}
	if escrow.State.IsTerminal() {
		return duxerrors.NewAlreadySettled("escrow", id, escrow.State.String())
	}
	return e.store.UpdateEscrowState(ctx, id, model.EscrowStateOpen, model.EscrowStateDisputed, nil)
}

func (e *Engine) settle(ctx context.Context, id string, to model.EscrowState) error {
	escrow, err := e.store.GetEscrow(ctx, id)
	if err != nil {
		return err
	}
	if escrow.State.IsTerminal() {
		return duxerrors.NewAlreadySettled("escrow", id, escrow.State.String())
	}

	err = e.store.UpdateEscrowState(ctx, id, escrow.State, to, func(escrow *model.Escrow) {
		escrow.SettledAt = time.Now().UTC()
	})
	if err != nil {
		if duxerrors.IsConflict(err) {
			// we may have lost a settlement race, report the no-op instead
			if current, getErr := e.store.GetEscrow(ctx, id); getErr == nil && current.State.IsTerminal() {
				return duxerrors.NewAlreadySettled("escrow", id, current.State.String())
			}
		}
		return err
	}

	// we won the compare-and-swap, move the funds exactly once
	if to == model.EscrowStateReleased {
		payout := escrow.Amount
		if e.fund != nil {
			fee := e.fund.FeeFor(escrow.Amount)
			payout = payout.Sub(fee)
			e.fund.AddFee(ctx, escrow.Currency, fee)
		}
		if err := e.wallet.Credit(ctx, escrow.SellerDID, escrow.Currency, payout); err != nil {
			return errors.Wrapf(err, "escrow %s released but seller credit failed", id)
		}
	} else {
		if err := e.wallet.Credit(ctx, escrow.BuyerDID, escrow.Currency, escrow.Amount); err != nil {
			return errors.Wrapf(err, "escrow %s refunded but buyer credit failed", id)
		}
	}

	escrowsSettledTotal.WithLabelValues(to.String()).Inc()
	log.Ctx(ctx).Info().
		Str("EscrowID", id).
		Str("Outcome", to.String()).
		Str("Amount", escrow.Amount.String()).
		Msg("settled escrow")

	// reputation is adjusted after the fact and retried on its own; a
	// failure here never unwinds the settlement
	delta := releaseReputationDelta
	if to == model.EscrowStateRefunded {
		delta = refundReputationDelta
	}
	go e.ledger.AdjustWithRetry(context.Background(), escrow.SellerDID, delta)

	return nil
}
