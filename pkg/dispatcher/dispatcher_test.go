//go:build unit || !integration

package dispatcher

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/escrow"
	"github.com/duxnet-project/duxnet/pkg/executor/inprocess"
	"github.com/duxnet-project/duxnet/pkg/executor/noop"
	"github.com/duxnet-project/duxnet/pkg/fund"
	"github.com/duxnet-project/duxnet/pkg/localdb/inmemory"
	"github.com/duxnet-project/duxnet/pkg/logger"
	"github.com/duxnet-project/duxnet/pkg/model"
	"github.com/duxnet-project/duxnet/pkg/reputation"
	"github.com/duxnet-project/duxnet/pkg/wallet"
)

const (
	clientDID   = "did:duxnet:client"
	providerDID = "did:duxnet:provider"
)

type DispatcherTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *inmemory.InMemoryDatastore
	ledger     *wallet.InMemoryLedger
	engine     *escrow.Engine
	clock      *clock.Mock
	dispatcher *Dispatcher
}

func TestDispatcherTestSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}

func (suite *DispatcherTestSuite) SetupTest() {
	logger.ConfigureTestLogging(suite.T())
	suite.ctx = context.Background()
	var err error
	suite.store, err = inmemory.NewInMemoryDatastore()
	require.NoError(suite.T(), err)
	suite.ledger = wallet.NewInMemoryLedger()
	suite.engine = escrow.NewEngine(escrow.Params{
		Store:  suite.store,
		Wallet: suite.ledger,
		Fund:   fund.NewFund(fund.Params{Wallet: suite.ledger}),
		Ledger: reputation.NewLedger(),
	})
	suite.clock = clock.NewMock()

	require.NoError(suite.T(), suite.store.AddService(suite.ctx, model.Service{
		ID:          "svc-translate",
		Name:        "translate-en-fr",
		Description: "English to French translation",
		Price:       decimal.RequireFromString("2.50"),
		Currency:    model.CurrencyUSDC,
		ProviderDID: providerDID,
		Active:      true,
	}))
	suite.ledger.Deposit(clientDID, model.CurrencyUSDC, decimal.RequireFromString("10.00"))
}

// newDispatcher wires the dispatcher after the executor choice, since the
// in-process executor needs the dispatcher as its callback.
func (suite *DispatcherTestSuite) newEchoDispatcher() *Dispatcher {
	d := NewDispatcher(Params{
		Store:  suite.store,
		Escrow: suite.engine,
		Clock:  suite.clock,
	})
	d.SetExecutor(inprocess.NewInProcessExecutor(d))
	return d
}

func (suite *DispatcherTestSuite) newNoopDispatcher() *Dispatcher {
	d := NewDispatcher(Params{
		Store:    suite.store,
		Escrow:   suite.engine,
		Executor: noop.NewNoopExecutor(),
		Clock:    suite.clock,
	})
	return d
}

func (suite *DispatcherTestSuite) submit(d *Dispatcher) model.Task {
	task, err := d.Submit(suite.ctx, SubmitRequest{
		ServiceID:      "svc-translate",
		ClientDID:      clientDID,
		Payload:        []byte("hello"),
		CPUCores:       1,
		MemoryMB:       512,
		TimeoutSeconds: 60,
	})
	require.NoError(suite.T(), err)
	return task
}

func (suite *DispatcherTestSuite) TestSubmitValidation() {
	d := suite.newEchoDispatcher()

	_, err := d.Submit(suite.ctx, SubmitRequest{
		ServiceID: "svc-translate", ClientDID: clientDID, CPUCores: 0, MemoryMB: 512, TimeoutSeconds: 60})
	suite.True(duxerrors.IsInvalidInput(err))

	_, err = d.Submit(suite.ctx, SubmitRequest{
		ServiceID: "svc-translate", ClientDID: clientDID, CPUCores: 1, MemoryMB: -1, TimeoutSeconds: 60})
	suite.True(duxerrors.IsInvalidInput(err))

	_, err = d.Submit(suite.ctx, SubmitRequest{
		ServiceID: "svc-translate", ClientDID: clientDID, CPUCores: 1, MemoryMB: 512, TimeoutSeconds: 0})
	suite.True(duxerrors.IsInvalidInput(err))

	_, err = d.Submit(suite.ctx, SubmitRequest{
		ServiceID: "svc-unknown", ClientDID: clientDID, CPUCores: 1, MemoryMB: 512, TimeoutSeconds: 60})
	suite.True(duxerrors.IsNotFound(err))
}

func (suite *DispatcherTestSuite) TestSubmitFailsWithoutFunds() {
	d := suite.newEchoDispatcher()
	_, err := d.Submit(suite.ctx, SubmitRequest{
		ServiceID:      "svc-translate",
		ClientDID:      "did:duxnet:broke",
		Payload:        []byte("hello"),
		CPUCores:       1,
		MemoryMB:       512,
		TimeoutSeconds: 60,
	})
	suite.True(duxerrors.IsInsufficientFunds(err))

	count, err := suite.store.CountTasks(suite.ctx)
	suite.NoError(err)
	suite.Zero(count, "no task may be scheduled without a funded escrow")
}

func (suite *DispatcherTestSuite) TestCompletionReleasesEscrow() {
	d := suite.newEchoDispatcher()
	task := suite.submit(d)
	suite.NotEmpty(task.EscrowID)

	suite.Eventually(func() bool {
		got, err := d.Get(suite.ctx, task.ID)
		return err == nil && got.State == model.TaskStateCompleted
	}, time.Second, 10*time.Millisecond)

	got, err := d.Get(suite.ctx, task.ID)
	suite.NoError(err)
	suite.Equal([]byte("hello"), got.Result)

	suite.Eventually(func() bool {
		settled, err := suite.engine.Get(suite.ctx, task.EscrowID)
		return err == nil && settled.State == model.EscrowStateReleased
	}, time.Second, 10*time.Millisecond)
}

func (suite *DispatcherTestSuite) TestTimeoutRefundsExactlyOnce() {
	d := suite.newNoopDispatcher()
	buyerBefore, err := suite.ledger.Balance(suite.ctx, clientDID, model.CurrencyUSDC)
	suite.NoError(err)

	task := suite.submit(d)

	// wait for dispatch to reach Running so the timer is armed
	suite.Eventually(func() bool {
		got, err := d.Get(suite.ctx, task.ID)
		return err == nil && got.State == model.TaskStateRunning
	}, time.Second, 10*time.Millisecond)

	// just before the deadline nothing happens
	suite.clock.Add(59 * time.Second)
	got, err := d.Get(suite.ctx, task.ID)
	suite.NoError(err)
	suite.Equal(model.TaskStateRunning, got.State)

	suite.clock.Add(2 * time.Second)
	suite.Eventually(func() bool {
		got, err := d.Get(suite.ctx, task.ID)
		return err == nil && got.State == model.TaskStateTimedOut
	}, time.Second, 10*time.Millisecond)

	suite.Eventually(func() bool {
		settled, err := suite.engine.Get(suite.ctx, task.EscrowID)
		return err == nil && settled.State == model.EscrowStateRefunded
	}, time.Second, 10*time.Millisecond)

	// full refund, issued exactly once
	buyerAfter, err := suite.ledger.Balance(suite.ctx, clientDID, model.CurrencyUSDC)
	suite.NoError(err)
	suite.True(buyerAfter.Equal(buyerBefore), "refund must restore the buyer's balance exactly once")

	// a late provider report is a no-op
	d.OnCompletion(suite.ctx, task.ID, []byte("too late"))
	got, err = d.Get(suite.ctx, task.ID)
	suite.NoError(err)
	suite.Equal(model.TaskStateTimedOut, got.State)
	suite.Nil(got.Result)
}

func (suite *DispatcherTestSuite) TestFailureRefundsBuyer() {
	d := suite.newNoopDispatcher()
	task := suite.submit(d)

	suite.Eventually(func() bool {
		got, err := d.Get(suite.ctx, task.ID)
		return err == nil && got.State == model.TaskStateRunning
	}, time.Second, 10*time.Millisecond)

	d.OnFailure(suite.ctx, task.ID, "provider exploded")

	got, err := d.Get(suite.ctx, task.ID)
	suite.NoError(err)
	suite.Equal(model.TaskStateFailed, got.State)
	suite.Equal("provider exploded", got.Error)

	settled, err := suite.engine.Get(suite.ctx, task.EscrowID)
	suite.NoError(err)
	suite.Equal(model.EscrowStateRefunded, settled.State)
}

func (suite *DispatcherTestSuite) TestTerminalTaskRetainedForAudit() {
	d := suite.newEchoDispatcher()
	task := suite.submit(d)

	suite.Eventually(func() bool {
		got, err := d.Get(suite.ctx, task.ID)
		return err == nil && got.State.IsTerminal()
	}, time.Second, 10*time.Millisecond)

	got, err := d.Get(suite.ctx, task.ID)
	suite.NoError(err)
	suite.False(got.EndedAt.IsZero())
}
