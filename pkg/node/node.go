package node

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duxnet-project/duxnet/pkg/directory"
	"github.com/duxnet-project/duxnet/pkg/dispatcher"
	"github.com/duxnet-project/duxnet/pkg/escrow"
	"github.com/duxnet-project/duxnet/pkg/executor"
	"github.com/duxnet-project/duxnet/pkg/executor/inprocess"
	"github.com/duxnet-project/duxnet/pkg/fund"
	"github.com/duxnet-project/duxnet/pkg/localdb"
	"github.com/duxnet-project/duxnet/pkg/localdb/inmemory"
	"github.com/duxnet-project/duxnet/pkg/reputation"
	"github.com/duxnet-project/duxnet/pkg/routing"
	"github.com/duxnet-project/duxnet/pkg/status"
	"github.com/duxnet-project/duxnet/pkg/system"
	"github.com/duxnet-project/duxnet/pkg/wallet"
)

// Node bundles the marketplace components behind one wiring point.
type Node struct {
	NodeID string
	DID    string

	Store      localdb.LocalDB
	Wallet     wallet.Wallet
	Reputation *reputation.Ledger
	Directory  *directory.Directory
	Fund       *fund.Fund
	Escrow     *escrow.Engine
	Dispatcher *dispatcher.Dispatcher
	Peers      *routing.PeerStore
	Status     *status.Aggregator
}

// Config carries the knobs for NewStandardNode. Zero values get sensible
// defaults so tests can construct nodes with an empty config.
type Config struct {
	NodeID string
	DID    string

	// FeeRate is the community fund's cut of escrow releases.
	FeeRate decimal.Decimal
	// DistributionInterval is how often the community fund pays out.
	DistributionInterval time.Duration
	// PeerTTL bounds how long a silent peer stays counted.
	PeerTTL time.Duration

	// Wallet defaults to an in-memory ledger; production wires the real
	// custody service here.
	Wallet wallet.Wallet
	// NewExecutor builds the compute provider given the dispatcher as its
	// report callback; defaults to the in-process echo executor.
	NewExecutor func(callback executor.Callback) executor.Executor

	Clock clock.Clock
}

// NewStandardNode wires up a complete node and starts its background loops.
// The loops stop when ctx is canceled; cm waits for them on shutdown.
func NewStandardNode(ctx context.Context, cm *system.CleanupManager, config Config) (*Node, error) {
	if config.NodeID == "" {
		config.NodeID = uuid.NewString()
	}
	if config.DID == "" {
		config.DID = "did:duxnet:" + config.NodeID
	}
	if config.Wallet == nil {
		config.Wallet = wallet.NewInMemoryLedger()
	}
	if config.NewExecutor == nil {
		config.NewExecutor = func(callback executor.Callback) executor.Executor {
			return inprocess.NewInProcessExecutor(callback)
		}
	}
	if config.Clock == nil {
		config.Clock = clock.New()
	}

	store, err := inmemory.NewInMemoryDatastore()
	if err != nil {
		return nil, err
	}

	ledger := reputation.NewLedger()
	communityFund := fund.NewFund(fund.Params{
		Wallet:               config.Wallet,
		Clock:                config.Clock,
		FeeRate:              config.FeeRate,
		DistributionInterval: config.DistributionInterval,
	})
	engine := escrow.NewEngine(escrow.Params{
		Store:  store,
		Wallet: config.Wallet,
		Fund:   communityFund,
		Ledger: ledger,
	})
	taskDispatcher := dispatcher.NewDispatcher(dispatcher.Params{
		Store:  store,
		Escrow: engine,
		Clock:  config.Clock,
	})
	taskDispatcher.SetExecutor(config.NewExecutor(taskDispatcher))

	peers := routing.NewPeerStore(config.PeerTTL, config.Clock)

	node := &Node{
		NodeID:     config.NodeID,
		DID:        config.DID,
		Store:      store,
		Wallet:     config.Wallet,
		Reputation: ledger,
		Directory:  directory.NewDirectory(store, ledger),
		Fund:       communityFund,
		Escrow:     engine,
		Dispatcher: taskDispatcher,
		Peers:      peers,
		Status: status.NewAggregator(status.Params{
			NodeID: config.NodeID,
			DID:    config.DID,
			Store:  store,
			Peers:  peers,
			Ledger: ledger,
			Clock:  config.Clock,
		}),
	}

	fundCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		communityFund.Run(fundCtx)
	}()
	cm.RegisterCallback(func() error {
		cancel()
		<-done
		return nil
	})

	return node, nil
}
