//go:build unit || !integration

package publicapi

import (
	"context"
	"testing"
	"time"

	"github.com/phayes/freeport"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/duxnet-project/duxnet/pkg/directory"
	"github.com/duxnet-project/duxnet/pkg/dispatcher"
	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/escrow"
	"github.com/duxnet-project/duxnet/pkg/logger"
	"github.com/duxnet-project/duxnet/pkg/model"
	"github.com/duxnet-project/duxnet/pkg/node"
	"github.com/duxnet-project/duxnet/pkg/system"
	"github.com/duxnet-project/duxnet/pkg/wallet"
)

const (
	clientDID   = "did:duxnet:client"
	providerDID = "did:duxnet:provider"
)

type ServerSuite struct {
	suite.Suite
	ctx    context.Context
	cm     *system.CleanupManager
	wallet *wallet.InMemoryLedger
	node   *node.Node
	client *APIClient
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.ctx = context.Background()
	s.cm = system.NewCleanupManager()
	s.wallet = wallet.NewInMemoryLedger()
	s.wallet.Deposit(clientDID, model.CurrencyUSDC, decimal.RequireFromString("10.00"))

	var err error
	s.node, err = node.NewStandardNode(s.ctx, s.cm, node.Config{
		NodeID: "test-node",
		Wallet: s.wallet,
	})
	require.NoError(s.T(), err)

	port, err := freeport.GetFreePort()
	require.NoError(s.T(), err)

	server := NewServer("127.0.0.1", port, s.node)
	go func() {
		_ = server.ListenAndServe(s.ctx, s.cm)
	}()
	s.client = NewAPIClient(server.GetURI())

	s.Require().Eventually(func() bool {
		alive, _ := s.client.Alive(s.ctx)
		return alive
	}, 5*time.Second, 50*time.Millisecond)
}

func (s *ServerSuite) TearDownTest() {
	s.cm.Cleanup()
}

func (s *ServerSuite) registerTranslate() model.Service {
	service, err := s.client.RegisterService(s.ctx, directory.RegisterRequest{
		Name:        "translate-en-fr",
		Description: "English to French translation",
		Price:       decimal.RequireFromString("2.50"),
		Currency:    model.CurrencyUSDC,
		ProviderDID: providerDID,
	})
	require.NoError(s.T(), err)
	return service
}

func (s *ServerSuite) TestVersionAndHealth() {
	info, err := s.client.Version(s.ctx)
	s.NoError(err)
	s.NotNil(info)
	s.NotEmpty(info.GOOS)
}

func (s *ServerSuite) TestRegisterAndSearch() {
	service := s.registerTranslate()
	s.NotEmpty(service.ID)
	s.True(service.Active)

	found, err := s.client.SearchServices(s.ctx, "translate")
	s.NoError(err)
	s.Len(found, 1)
	s.Equal(service.ID, found[0].ID)

	got, err := s.client.GetService(s.ctx, service.ID)
	s.NoError(err)
	s.Equal(service.Name, got.Name)
}

func (s *ServerSuite) TestRegisterValidationIsBadRequest() {
	_, err := s.client.RegisterService(s.ctx, directory.RegisterRequest{
		Name:     "",
		Price:    decimal.RequireFromString("-1"),
		Currency: model.Currency("SHELLS"),
	})
	s.Error(err)
	s.True(duxerrors.IsInvalidInput(err), "expected invalid-input, got %v", err)
}

func (s *ServerSuite) TestGetUnknownServiceIsNotFound() {
	_, err := s.client.GetService(s.ctx, "svc-does-not-exist")
	s.Error(err)
	s.True(duxerrors.IsNotFound(err), "expected not-found, got %v", err)
}

func (s *ServerSuite) TestSubmitWithoutFundsIsPaymentRequired() {
	service := s.registerTranslate()
	_, err := s.client.SubmitTask(s.ctx, dispatcher.SubmitRequest{
		ServiceID:      service.ID,
		ClientDID:      "did:duxnet:broke",
		Payload:        []byte("bonjour"),
		CPUCores:       1,
		MemoryMB:       512,
		TimeoutSeconds: 60,
	})
	s.Error(err)
	s.True(duxerrors.IsInsufficientFunds(err), "expected insufficient-funds, got %v", err)
}

// The full paid-task round trip: a 2.50 USDC translation settles with the
// seller credited 2.375, the community fund keeping 0.125 and the buyer down
// exactly the price.
func (s *ServerSuite) TestPaidTaskRoundTrip() {
	service := s.registerTranslate()

	task, err := s.client.SubmitTask(s.ctx, dispatcher.SubmitRequest{
		ServiceID:      service.ID,
		ClientDID:      clientDID,
		Payload:        []byte("the quick brown fox"),
		CPUCores:       1,
		MemoryMB:       512,
		TimeoutSeconds: 60,
	})
	s.Require().NoError(err)
	s.NotEmpty(task.EscrowID)

	s.Require().Eventually(func() bool {
		got, err := s.client.GetTask(s.ctx, task.ID)
		return err == nil && got.State == model.TaskStateCompleted
	}, 5*time.Second, 50*time.Millisecond)

	s.Require().Eventually(func() bool {
		settled, err := s.client.GetEscrow(s.ctx, task.EscrowID)
		return err == nil && settled.State == model.EscrowStateReleased
	}, 5*time.Second, 50*time.Millisecond)

	buyer, err := s.wallet.Balance(s.ctx, clientDID, model.CurrencyUSDC)
	s.NoError(err)
	s.True(buyer.Equal(decimal.RequireFromString("7.50")), "buyer balance: %s", buyer)

	seller, err := s.wallet.Balance(s.ctx, providerDID, model.CurrencyUSDC)
	s.NoError(err)
	s.True(seller.Equal(decimal.RequireFromString("2.375")), "seller balance: %s", seller)

	balances, err := s.client.CommunityFundStats(s.ctx)
	s.NoError(err)
	for _, balance := range balances {
		if balance.Currency == model.CurrencyUSDC {
			s.True(balance.Balance.Equal(decimal.RequireFromString("0.125")), "fund balance: %s", balance.Balance)
		}
	}
}

func (s *ServerSuite) TestManualEscrowLifecycle() {
	service := s.registerTranslate()

	opened, err := s.client.CreateEscrow(s.ctx, escrow.CreateRequest{
		ServiceID: service.ID,
		BuyerDID:  clientDID,
		SellerDID: providerDID,
		Amount:    decimal.RequireFromString("1.00"),
		Currency:  model.CurrencyUSDC,
	})
	s.Require().NoError(err)
	s.Equal(model.EscrowStateOpen, opened.State)

	disputed, err := s.client.DisputeEscrow(s.ctx, opened.ID)
	s.NoError(err)
	s.Equal(model.EscrowStateDisputed, disputed.State)

	refunded, err := s.client.RefundEscrow(s.ctx, opened.ID)
	s.NoError(err)
	s.Equal(model.EscrowStateRefunded, refunded.State)

	// settling again is a reported no-op, not an error
	again, err := s.client.RefundEscrow(s.ctx, opened.ID)
	s.NoError(err)
	s.Equal(model.EscrowStateRefunded, again.State)
}

func (s *ServerSuite) TestStatusAndStats() {
	s.registerTranslate()

	status, err := s.client.NodeStatus(s.ctx)
	s.NoError(err)
	s.Equal("test-node", status.NodeID)
	s.True(status.IsOnline)
	s.Equal(1, status.ServicesCount)

	stats, err := s.client.NetworkStats(s.ctx)
	s.NoError(err)
	s.Equal(1, stats.TotalServices)

	score, err := s.client.Reputation(s.ctx, providerDID)
	s.NoError(err)
	s.InDelta(5.0, score, 0.01)
}
