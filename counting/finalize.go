package rainflow

import (
	"fmt"
	"math"
	"sort"

	Rt "github.com/mkarrer/rainflow/types"
	"gonum.org/v1/gonum/floats"
)

// Finalize disposes of the residue under the selected policy and
// ends the session in Finished (or Error). It runs exactly once;
// further Feed calls are rejected afterwards. The one exception is
// PolicyNoFinalize, which stops without even promoting the interim
// point and leaves the session resumable.
func (s *Session) Finalize(p Rt.Policy) error {
	switch s.state {
	case Rt.Error:
		return s.poisoned()
	case Rt.Init, Rt.Busy, Rt.BusyInterim:
	default:
		return s.fail(fmt.Errorf("finalize in state %d: %w", s.state, ErrInvalidArgument))
	}

	if p == Rt.PolicyNoFinalize {
		return nil
	}

	s.state = Rt.Finalize
	s.damagePreFinal = s.damage

	if err := s.runPolicy(p); err != nil {
		if s.state != Rt.Error {
			return s.fail(err)
		}
		return err
	}
	if s.History != nil {
		if err := s.History.Flush(); err != nil {
			return s.fail(fmt.Errorf("damage history flush: %w", err))
		}
	}
	s.finalized = true
	s.state = Rt.Finished
	return nil
}

func (s *Session) runPolicy(p Rt.Policy) error {
	switch p {
	case Rt.PolicyIgnore:
		return s.promote()
	case Rt.PolicyDiscard:
		if err := s.promote(); err != nil {
			return err
		}
		s.residue.Reset()
		return nil
	case Rt.PolicyHalfCycles:
		return s.pairwise(0.5)
	case Rt.PolicyFullCycles:
		return s.pairwise(1.0)
	case Rt.PolicyClormannSeeger:
		return s.clormannSeeger()
	case Rt.PolicyRepeated:
		return s.repeated()
	case Rt.PolicyRPDIN45667:
		return s.rangePairDIN()
	}
	return fmt.Errorf("unknown finalize policy %d: %w", p, ErrInvalidArgument)
}

// promote confirms the turning points the filter still owes (the
// interim candidate, plus the forced last sample in margin mode)
// and lets the strategy close once more over each.
func (s *Session) promote() error {
	for _, tp := range s.filter.Finish() {
		if err := s.confirm(tp); err != nil {
			return err
		}
	}
	return nil
}

// pairwise counts every remaining adjacent residue pair at the
// given weight, then empties the residue.
func (s *Session) pairwise(w float64) error {
	if err := s.promote(); err != nil {
		return err
	}
	r := s.residue
	for i := 0; i+1 < r.Len(); i++ {
		if err := s.count(cycleWeighted(r.At(i), r.At(i+1), w)); err != nil {
			return err
		}
	}
	r.Reset()
	return nil
}

// clormannSeeger scans adjacent residue quads left to right and
// closes the middle swing of a quad as one full cycle whenever its
// magnitude does not exceed either neighbouring swing (ties close).
// After a match the scan backs up one position so cascades are
// found. Whatever survives the scan is discarded.
func (s *Session) clormannSeeger() error {
	if err := s.promote(); err != nil {
		return err
	}
	classified := s.quant.Enabled()
	r := s.residue
	i := 0
	for i+3 < r.Len() {
		a := level(r.At(i), classified)
		b := r.At(i + 1)
		c := r.At(i + 2)
		d := level(r.At(i+3), classified)

		mid := math.Abs(level(c, classified) - level(b, classified))
		left := math.Abs(level(b, classified) - a)
		right := math.Abs(d - level(c, classified))
		if mid <= left && mid <= right {
			if err := s.count(fullCycle(b, c)); err != nil {
				return err
			}
			r.RemovePair(i + 1)
			if i > 0 {
				i--
			}
			continue
		}
		i++
	}
	r.Reset()
	return nil
}

// repeated simulates periodic repetition: a copy of the residue is
// appended to itself and re-fed through the normal closing pipeline,
// then whatever remains is discarded. The junction is run through
// the same alternation rules the filter enforces, so degenerate
// points collapse instead of breaking the slope invariant.
func (s *Session) repeated() error {
	if err := s.promote(); err != nil {
		return err
	}
	pts := s.residue.Points()

	// the doubled signal can briefly need twice the bound
	doubled := NewResidueWithCap(2*s.residue.max + 1)
	for _, tp := range pts {
		if err := doubled.Push(tp); err != nil {
			return err
		}
	}
	s.residue = doubled

	for _, tp := range pts {
		if err := s.refeedConfirm(tp); err != nil {
			return err
		}
	}
	s.residue.Reset()
	return nil
}

// refeedConfirm appends one copied turning point while preserving
// the alternating-slope invariant: equal-valued junction points are
// dropped, and a point continuing the current slope replaces the
// tail instead of stacking behind it.
func (s *Session) refeedConfirm(tp Rt.TurningPoint) error {
	r := s.residue
	n := r.Len()
	if n > 0 {
		dl := tp.Value - r.At(n-1).Value
		if dl == 0 {
			return nil
		}
		if n > 1 {
			prev := r.At(n-1).Value - r.At(n-2).Value
			if (dl > 0) == (prev > 0) {
				r.ReplaceLast(tp)
				return s.closer.Advance(r, s.count)
			}
		}
	}
	if err := r.Push(tp); err != nil {
		return err
	}
	return s.closer.Advance(r, s.count)
}

// rangePairDIN implements the RP-DIN45667 disposal: residue slopes
// are split into rising and falling groups, each sorted by
// magnitude, and the largest opposite-sign slopes are paired off.
// Every pair counts once at the range both slopes can carry. A
// slope pair has no absolute from/to classes, so only the
// range-pair histogram and the damage accumulator are updated.
func (s *Session) rangePairDIN() error {
	if err := s.promote(); err != nil {
		return err
	}
	classified := s.quant.Enabled()
	pts := s.residue.Points()

	var rising, falling []float64
	for i := 0; i+1 < len(pts); i++ {
		d := level(pts[i+1], classified) - level(pts[i], classified)
		switch {
		case d > 0:
			rising = append(rising, d)
		case d < 0:
			falling = append(falling, -d)
		}
	}
	sort.Float64s(rising)
	floats.Reverse(rising)
	sort.Float64s(falling)
	floats.Reverse(falling)

	pairs := len(rising)
	if len(falling) < pairs {
		pairs = len(falling)
	}
	for k := 0; k < pairs; k++ {
		rng := math.Min(rising[k], falling[k])
		if rng <= 0 {
			continue
		}
		s.cycles += 1.0
		if s.rangePairs != nil {
			if err := s.rangePairs.Add(int(math.Round(rng)), 1.0); err != nil {
				return err
			}
		}
		if s.curve != nil {
			s.damage += s.rangeDamage(rng)
		}
	}
	s.residue.Reset()
	return nil
}
