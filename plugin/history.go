package plugin

import (
	"sync"
)

// HistoryBuffer spreads per-cycle damage increments over stream
// positions, so callers can later export a damage-over-time view.
// It implements the session's DamageHistorian collaborator.
type HistoryBuffer struct {
	MU         sync.Mutex
	Increments map[uint64]float64
	total      float64
	flushed    bool
}

func NewHistoryBuffer() *HistoryBuffer {
	return &HistoryBuffer{
		Increments: make(map[uint64]float64),
	}
}

// WriteIncrement books damage against the position the cycle closed at.
func (hb *HistoryBuffer) WriteIncrement(pos uint64, damage float64) error {
	hb.MU.Lock()
	defer hb.MU.Unlock()
	hb.Increments[pos] += damage
	hb.total += damage
	return nil
}

// Flush marks the history complete. The in-memory buffer has
// nothing to write out, but the flag lets callers detect a
// finished session.
func (hb *HistoryBuffer) Flush() error {
	hb.MU.Lock()
	defer hb.MU.Unlock()
	hb.flushed = true
	return nil
}

// Flushed reports whether the owning session finalized.
func (hb *HistoryBuffer) Flushed() bool {
	hb.MU.Lock()
	defer hb.MU.Unlock()
	return hb.flushed
}

// Total is the damage accumulated across all increments.
func (hb *HistoryBuffer) Total() float64 {
	hb.MU.Lock()
	defer hb.MU.Unlock()
	return hb.total
}

// At returns the damage booked against one position.
func (hb *HistoryBuffer) At(pos uint64) float64 {
	hb.MU.Lock()
	defer hb.MU.Unlock()
	return hb.Increments[pos]
}
