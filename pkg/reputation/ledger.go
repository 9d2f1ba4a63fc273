package reputation

import (
	"context"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/duxnet-project/duxnet/pkg/duxerrors"
)

const (
	// BaselineScore is reported for identities with no settlement history.
	BaselineScore = 5.0

	MinScore = 0.0
	MaxScore = 5.0
)

// Ledger maintains a bounded trust score per DID. Scores move only through
// settlement outcomes; there is no client-facing write path.
type Ledger struct {
	scores map[string]float64
	mtx    sync.RWMutex
}

func NewLedger() *Ledger {
	return &Ledger{
		scores: map[string]float64{},
	}
}

// Get returns the score for a DID, defaulting to the baseline for unknown
// identities. It never fails.
func (l *Ledger) Get(ctx context.Context, did string) float64 {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	score, ok := l.scores[did]
	if !ok {
		return BaselineScore
	}
	return score
}

// Adjust applies a delta to a DID's score, clamped to [MinScore, MaxScore].
// Adjustments for the same identity serialize on the ledger lock so no
// update is lost.
func (l *Ledger) Adjust(ctx context.Context, did string, delta float64) error {
	if did == "" {
		return duxerrors.NewInvalidInput("reputation adjustment requires a DID")
	}
	l.mtx.Lock()
	defer l.mtx.Unlock()
	score, ok := l.scores[did]
	if !ok {
		score = BaselineScore
	}
	score += delta
	if score < MinScore {
		score = MinScore
	}
	if score > MaxScore {
		score = MaxScore
	}
	l.scores[did] = score
	return nil
}

// AdjustWithRetry is the settlement-side entry point. A reputation update
// failing must never roll back the settlement that triggered it, so failures
// are retried with exponential backoff and finally logged as recoverable.
func (l *Ledger) AdjustWithRetry(ctx context.Context, did string, delta float64) {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	err := backoff.Retry(func() error {
		return l.Adjust(ctx, did, delta)
	}, policy)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("DID", did).
			Float64("Delta", delta).
			Msg("giving up on reputation adjustment after retries")
	}
}

// Snapshot returns a copy of all known scores.
func (l *Ledger) Snapshot(ctx context.Context) map[string]float64 {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	out := make(map[string]float64, len(l.scores))
	for did, score := range l.scores {
		out[did] = score
	}
	return out
}
