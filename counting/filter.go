package rainflow

import (
	Rt "github.com/mkarrer/rainflow/types"
)

// TPFilter is the streaming turning-point filter.
// It has two phases: searching (no turning point confirmed yet,
// tracking the running min/max of the prefix) and tracking-interim
// (one unconfirmed candidate at the tail). A sample confirms the
// interim candidate only when it reverses direction by more than
// the hysteresis band.
//
// With Margin set, the very first and the very last sample of the
// stream are forced out as turning points regardless of hysteresis.
type TPFilter struct {
	Hysteresis float64
	Margin     bool

	started      bool
	bootstrapped bool
	firstEmitted bool // margin mode: first sample already confirmed
	slope        int  // direction toward the interim: +1 rising, -1 falling
	haveInterim  bool
	interim      Rt.TurningPoint

	min, max Rt.TurningPoint // running extremes while searching
	first    Rt.TurningPoint
	last     Rt.TurningPoint
}

// NewTPFilter returns a filter in the searching phase.
func NewTPFilter(hysteresis float64, margin bool) *TPFilter {
	return &TPFilter{Hysteresis: hysteresis, Margin: margin}
}

// Interim returns the current unconfirmed candidate, if one exists.
func (f *TPFilter) Interim() (Rt.TurningPoint, bool) {
	return f.interim, f.haveInterim
}

// Push consumes one sample and returns the confirmed turning point
// it produced, if any. At most one turning point is emitted per sample.
func (f *TPFilter) Push(tp Rt.TurningPoint) (Rt.TurningPoint, bool) {
	f.last = tp

	if !f.started {
		f.started = true
		f.first = tp
		f.min, f.max = tp, tp
		if f.Margin {
			f.firstEmitted = true
			return tp, true
		}
		return Rt.TurningPoint{}, false
	}

	if !f.bootstrapped {
		return f.search(tp)
	}

	delta := tp.Value - f.interim.Value
	if f.slope > 0 {
		if delta > 0 {
			f.interim = tp // slope continues
			return Rt.TurningPoint{}, false
		}
		if -delta > f.Hysteresis {
			confirmed := f.interim
			f.interim = tp
			f.slope = -1
			return confirmed, true
		}
		return Rt.TurningPoint{}, false
	}
	if delta < 0 {
		f.interim = tp
		return Rt.TurningPoint{}, false
	}
	if delta > f.Hysteresis {
		confirmed := f.interim
		f.interim = tp
		f.slope = +1
		return confirmed, true
	}
	return Rt.TurningPoint{}, false
}

// search tracks the running extremes of the prefix and emits the
// first confirmed pair once their spread exceeds the hysteresis,
// ordering the earlier-reached extreme first.
func (f *TPFilter) search(tp Rt.TurningPoint) (Rt.TurningPoint, bool) {
	if tp.Value < f.min.Value {
		f.min = tp
	}
	if tp.Value > f.max.Value {
		f.max = tp
	}
	if f.max.Value-f.min.Value <= f.Hysteresis {
		return Rt.TurningPoint{}, false
	}

	f.bootstrapped = true
	earlier, later := f.min, f.max
	f.slope = +1
	if f.max.Position < f.min.Position {
		earlier, later = f.max, f.min
		f.slope = -1
	}
	f.interim = later
	f.haveInterim = true

	// In margin mode the first sample went out already; do not
	// emit it a second time when it is also the earlier extreme.
	if f.firstEmitted && earlier.Position == f.first.Position {
		return Rt.TurningPoint{}, false
	}
	return earlier, true
}

// Finish returns the turning points still owed at end-of-stream:
// the interim candidate, plus the forced last sample in margin mode.
// It does not reset the filter.
func (f *TPFilter) Finish() []Rt.TurningPoint {
	var out []Rt.TurningPoint
	if !f.bootstrapped {
		if f.Margin && f.started && f.last.Position != f.first.Position {
			out = append(out, f.last)
		}
		return out
	}
	if f.haveInterim {
		out = append(out, f.interim)
		if f.Margin && f.last.Position != f.interim.Position {
			out = append(out, f.last)
		}
	}
	return out
}
