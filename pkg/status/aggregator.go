package status

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/duxnet-project/duxnet/pkg/localdb"
	"github.com/duxnet-project/duxnet/pkg/model"
	"github.com/duxnet-project/duxnet/pkg/reputation"
	"github.com/duxnet-project/duxnet/pkg/routing"
)

// Aggregator assembles the read-only node and network snapshots polled by
// clients. It only ever reads; staleness is bounded by the caller's polling
// interval.
type Aggregator struct {
	nodeID string
	did    string

	store  localdb.LocalDB
	peers  *routing.PeerStore
	ledger *reputation.Ledger

	clock     clock.Clock
	startedAt time.Time
}

type Params struct {
	NodeID string
	DID    string
	Store  localdb.LocalDB
	Peers  *routing.PeerStore
	Ledger *reputation.Ledger
	Clock  clock.Clock
}

func NewAggregator(params Params) *Aggregator {
	if params.Clock == nil {
		params.Clock = clock.New()
	}
	return &Aggregator{
		nodeID:    params.NodeID,
		did:       params.DID,
		store:     params.Store,
		peers:     params.Peers,
		ledger:    params.Ledger,
		clock:     params.Clock,
		startedAt: params.Clock.Now(),
	}
}

func (a *Aggregator) NodeStatus(ctx context.Context) (model.NodeStatus, error) {
	services, err := a.store.CountServices(ctx)
	if err != nil {
		return model.NodeStatus{}, err
	}
	return model.NodeStatus{
		NodeID:          a.nodeID,
		DID:             a.did,
		IsOnline:        true,
		UptimeSeconds:   int64(a.clock.Now().Sub(a.startedAt).Seconds()),
		ServicesCount:   services,
		ReputationScore: a.ledger.Get(ctx, a.did),
		PeersCount:      a.peers.Count(),
	}, nil
}

func (a *Aggregator) NetworkStats(ctx context.Context) (model.NetworkStats, error) {
	services, err := a.store.CountServices(ctx)
	if err != nil {
		return model.NetworkStats{}, err
	}
	tasks, err := a.store.CountTasks(ctx)
	if err != nil {
		return model.NetworkStats{}, err
	}
	return model.NetworkStats{
		PeersCount:    a.peers.Count(),
		TotalServices: services,
		TotalTasks:    tasks,
	}, nil
}
