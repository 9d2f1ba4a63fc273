package routing

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultPeerTTL is how long a peer stays listed after its last heartbeat.
const DefaultPeerTTL = 5 * time.Minute

// Peer is a remote node we have heard from recently.
type Peer struct {
	ID       string    `json:"id"`
	Address  string    `json:"address"`
	LastSeen time.Time `json:"last_seen"`
}

// PeerStore tracks known peers with a TTL. Entries past their TTL are
// treated as gone; Touch resurrects them.
type PeerStore struct {
	peers map[string]Peer
	ttl   time.Duration
	clock clock.Clock
	mtx   sync.RWMutex
}

func NewPeerStore(ttl time.Duration, clk clock.Clock) *PeerStore {
	if ttl == 0 {
		ttl = DefaultPeerTTL
	}
	if clk == nil {
		clk = clock.New()
	}
	return &PeerStore{
		peers: map[string]Peer{},
		ttl:   ttl,
		clock: clk,
	}
}

// Touch upserts a peer and refreshes its last-seen time.
func (s *PeerStore) Touch(id, address string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.peers[id] = Peer{
		ID:       id,
		Address:  address,
		LastSeen: s.clock.Now(),
	}
}

// List returns live peers sorted by id.
func (s *PeerStore) List() []Peer {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	cutoff := s.clock.Now().Add(-s.ttl)
	result := []Peer{}
	for _, peer := range s.peers {
		if peer.LastSeen.After(cutoff) {
			result = append(result, peer)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Count returns the number of live peers.
func (s *PeerStore) Count() int {
	return len(s.List())
}

// Prune drops expired entries. List already filters them; Prune just keeps
// the map from growing without bound on long-running nodes.
func (s *PeerStore) Prune() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	cutoff := s.clock.Now().Add(-s.ttl)
	for id, peer := range s.peers {
		if !peer.LastSeen.After(cutoff) {
			delete(s.peers, id)
		}
	}
}
