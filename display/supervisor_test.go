package rainflow_test

import (
	"testing"
	"time"

	Rc "github.com/mkarrer/rainflow/counting"
	Rd "github.com/mkarrer/rainflow/display"
	Ro "github.com/mkarrer/rainflow/obvy"
	Rt "github.com/mkarrer/rainflow/types"
)

// makeLiveTestView builds a View over a fresh session ready to feed.
func makeLiveTestView(t *testing.T) *Rd.View {
	t.Helper()
	s := Rc.NewSession(Rc.Config{
		ClassCount:  4,
		ClassWidth:  1.0,
		ClassOffset: 0.5,
		Hysteresis:  0.99,
		Method:      Rt.FourPoint,
		CountMatrix: true,
	})
	if err := s.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return &Rd.View{
		Session: s,
		Stats:   Ro.NewStatsInternal(),
	}
}

// sessionState reads the state under the view lock.
func sessionState(v *Rd.View) Rt.CountingState {
	v.MU.Lock()
	defer v.MU.Unlock()
	return v.Session.State()
}

func TestSliceSampler(t *testing.T) {
	t.Run("Replays in fixed batches", func(t *testing.T) {
		s := &Rd.SliceSampler{Values: []float64{1, 2, 3, 4, 5}, Batch: 2}

		b, ok := s.Next()
		if !ok {
			t.Fatalf("expected a batch")
		}
		assertInt(t, len(b), 2)

		b, _ = s.Next()
		assertInt(t, len(b), 2)

		b, ok = s.Next()
		if !ok {
			t.Fatalf("expected the short tail batch")
		}
		assertInt(t, len(b), 1)

		_, ok = s.Next()
		if ok {
			t.Errorf("expected the sampler to be drained")
		}
	})

	t.Run("Zero batch size falls back to a default", func(t *testing.T) {
		s := &Rd.SliceSampler{Values: []float64{1, 2, 3}}
		b, ok := s.Next()
		if !ok {
			t.Fatalf("expected a batch")
		}
		assertInt(t, len(b), 3)
	})
}

func TestView_FeedNextBatch(t *testing.T) {
	view := makeLiveTestView(t)
	sampler := &Rd.SliceSampler{Values: []float64{1, 3, 2, 4}, Batch: 2}

	t.Run("Feeds batches until the source drains", func(t *testing.T) {
		if done := view.FeedNextBatch(sampler, Rt.PolicyIgnore); done {
			t.Fatalf("expected more batches after the first")
		}
		if done := view.FeedNextBatch(sampler, Rt.PolicyIgnore); done {
			t.Fatalf("expected the finalize call to come separately")
		}
		if done := view.FeedNextBatch(sampler, Rt.PolicyIgnore); !done {
			t.Fatalf("expected the drained source to finalize")
		}
	})

	t.Run("Session is finalized afterwards", func(t *testing.T) {
		if view.Session.State() != Rt.Finished {
			t.Errorf("expected Finished, got state %d", view.Session.State())
		}
		assertFloat64(t, view.Session.CycleCount(), 1.0)
	})
}

func TestFeedSupervisor(t *testing.T) {
	t.Run("Creates new struct", func(t *testing.T) {
		view := makeLiveTestView(t)
		sampler := &Rd.SliceSampler{Values: []float64{1, 3, 2, 4}, Batch: 2}
		fs := view.NewFeedSupervisor(sampler, Rt.PolicyIgnore)

		if fs.View != view {
			t.Errorf("NewFeedSupervisor() view = %v, want %v", fs.View, view)
		}
		if view.Supervisor != fs {
			t.Errorf("expected the supervisor to attach to the view")
		}
	})

	t.Run("Runs the session to completion", func(t *testing.T) {
		view := makeLiveTestView(t)
		sampler := &Rd.SliceSampler{Values: []float64{1, 3, 2, 4}, Batch: 1}
		fs := view.NewFeedSupervisor(sampler, Rt.PolicyIgnore)

		fs.Start()
		defer fs.Stop()

		if fs.StopChan == nil {
			t.Errorf("StopChan() should be initialized, not nil")
		}
		if fs.Ticker == nil {
			t.Errorf("Ticker() should be initialized, not nil")
		}

		// five ticks at 100ms drain four single-sample batches
		// plus the finalize call
		deadline := time.After(3 * time.Second)
		for sessionState(view) != Rt.Finished {
			select {
			case <-deadline:
				t.Fatalf("session never finished, state %d", sessionState(view))
			case <-time.After(50 * time.Millisecond):
			}
		}
	})

	t.Run("Stops cleanly mid-stream", func(t *testing.T) {
		view := makeLiveTestView(t)
		values := make([]float64, 10000)
		for i := range values {
			values[i] = 1.0
		}
		sampler := &Rd.SliceSampler{Values: values, Batch: 1}
		fs := view.NewFeedSupervisor(sampler, Rt.PolicyIgnore)

		fs.Start()
		time.Sleep(250 * time.Millisecond)

		done := make(chan struct{})
		go func() {
			fs.Stop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("supervisor did not stop")
		}
	})
}
