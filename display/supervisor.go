package rainflow

import (
	"log/slog"
	"sync"
	"time"

	Rt "github.com/mkarrer/rainflow/types"
)

// Sampler hands the supervisor one batch of raw samples per tick.
// Next returns false when the source is exhausted.
type Sampler interface {
	Next() ([]float64, bool)
}

// SliceSampler replays a pre-loaded series in fixed-size batches.
type SliceSampler struct {
	Values []float64
	Batch  int
	pos    int
}

func (s *SliceSampler) Next() ([]float64, bool) {
	if s.pos >= len(s.Values) {
		return nil, false
	}
	b := s.Batch
	if b <= 0 {
		b = 64
	}
	end := s.pos + b
	if end > len(s.Values) {
		end = len(s.Values)
	}
	out := s.Values[s.pos:end]
	s.pos = end
	return out, true
}

// FeedSupervisor is a wrapper around the View that manages the feeding goroutine
// They are strongly coupled, one knows about the other
type FeedSupervisor struct {
	View     *View
	Sampler  Sampler
	Policy   Rt.Policy
	Ticker   *time.Ticker
	StopChan chan struct{}
	WG       sync.WaitGroup
}

// NewFeedSupervisor wires a sampler and a finalize policy to the View.
func (v *View) NewFeedSupervisor(s Sampler, p Rt.Policy) *FeedSupervisor {
	fs := &FeedSupervisor{
		View:    v,
		Sampler: s,
		Policy:  p,
	}
	v.Supervisor = fs
	return fs
}

// Start the FeedSupervisor
func (f *FeedSupervisor) Start() {
	f.StopChan = make(chan struct{})
	f.Ticker = time.NewTicker(100 * time.Millisecond)

	f.WG.Add(1)
	go func() {
		defer f.WG.Done()
		defer f.Ticker.Stop()

		for {
			select {
			case <-f.Ticker.C:
				if done := f.View.FeedNextBatch(f.Sampler, f.Policy); done {
					return
				}
			case <-f.StopChan:
				return
			}
		}
	}()
}

// Stop the FeedSupervisor
func (f *FeedSupervisor) Stop() {
	if f.StopChan != nil {
		close(f.StopChan)
		f.WG.Wait()
	}
}

// Restart the FeedSupervisor
func (f *FeedSupervisor) Restart() {
	f.Stop()
	f.Start()
}

// FeedNextBatch pulls one batch from the sampler and runs it through
// the session, keeping the prometheus counters current. It returns
// true once the source is drained and the session finalized, so the
// supervisor loop knows to exit.
func (v *View) FeedNextBatch(s Sampler, p Rt.Policy) bool {
	batch, ok := s.Next()
	if !ok {
		v.MU.Lock()
		defer v.MU.Unlock()
		if err := v.Session.Finalize(p); err != nil {
			slog.Error("Failed to finalize", slog.Any("Error", err))
		}
		v.syncStatsLocked()
		return true
	}

	v.MU.Lock()
	defer v.MU.Unlock()
	if err := v.Session.Feed(batch); err != nil {
		// Only log the error, the session is already poisoned
		slog.Error("Failed to feed batch", slog.Any("Error", err))
		return true
	}
	v.Stats.SamplesFed.Add(float64(len(batch)))
	v.syncStatsLocked()
	return false
}

// syncStatsLocked moves the session counters into prometheus.
// Counters are monotonic, so only the delta since the last sync
// is added. Caller holds v.MU.
func (v *View) syncStatsLocked() {
	tp := v.Session.TurningPointCount()
	if tp > v.lastTP {
		v.Stats.TurningPoints.Add(float64(tp - v.lastTP))
		v.lastTP = tp
	}
	cy := v.Session.CycleCount()
	if cy > v.lastCycles {
		v.Stats.CyclesClosed.Add(cy - v.lastCycles)
		v.lastCycles = cy
	}
	v.Stats.Damage.Set(v.Session.Damage())
}
