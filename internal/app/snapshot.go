package app

import (
	"sync"

	"pricetrail/internal/ports/inbound"

	"github.com/rs/zerolog"
)

// SnapshotHolder owns the dashboard view state. Refreshes may race (an
// auto-refresh against a user-triggered reload): each in-flight request
// is stamped with a sequence number and the auth epoch at issue time, and
// a response is applied only if it is newer than the current snapshot and
// from the live session. Stale or post-sign-out responses are dropped
// instead of clobbering fresher data.
type SnapshotHolder struct {
	epochFn func() uint64
	logger  zerolog.Logger

	mu        sync.Mutex
	issuedSeq uint64
	current   *inbound.Dashboard
}

type SnapshotHolderParams struct {
	// EpochFn reports the auth manager's current epoch
	EpochFn func() uint64
	Logger  zerolog.Logger
}

// NewSnapshotHolder creates an empty snapshot holder
func NewSnapshotHolder(params SnapshotHolderParams) *SnapshotHolder {
	return &SnapshotHolder{
		epochFn: params.EpochFn,
		logger:  params.Logger.With().Str("component", "snapshot_holder").Logger(),
	}
}

// Begin stamps a new refresh request: a fresh sequence number plus the
// auth epoch it belongs to. Callers copy both onto the dashboard they
// eventually pass to Apply.
func (h *SnapshotHolder) Begin() (seq, epoch uint64) {
	h.mu.Lock()
	h.issuedSeq++
	seq = h.issuedSeq
	h.mu.Unlock()

	return seq, h.epochFn()
}

// Apply installs the snapshot if it is still current. It reports whether
// the snapshot was accepted.
func (h *SnapshotHolder) Apply(dashboard *inbound.Dashboard) bool {
	if dashboard.Epoch != h.epochFn() {
		h.logger.Debug().
			Uint64("snapshot_epoch", dashboard.Epoch).
			Msg("Dropping snapshot from a superseded session")
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current != nil && dashboard.Seq <= h.current.Seq {
		h.logger.Debug().
			Uint64("snapshot_seq", dashboard.Seq).
			Uint64("current_seq", h.current.Seq).
			Msg("Dropping superseded snapshot")
		return false
	}

	h.current = dashboard
	return true
}

// Current returns the installed snapshot, or nil before the first apply.
// Snapshots are immutable; callers must not mutate the returned value.
func (h *SnapshotHolder) Current() *inbound.Dashboard {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Reset drops the installed snapshot, e.g. on sign-out
func (h *SnapshotHolder) Reset() {
	h.mu.Lock()
	h.current = nil
	h.mu.Unlock()
}
