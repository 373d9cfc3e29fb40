package rainflow

import "math"

/*
	HCM (Clormann/Seeger hysteresis counting method)

	An explicit push/compare stack over the residue, tracking two
	1-based indices: ir marks the deepest point from which cycles are
	currently closable (everything at or below it is residuum memory),
	iz is the current search position, always the residue top.

	Comparisons use raw values with a small epsilon so equal-valued
	reversals still close. Equivalent to the 4-point method for
	well-formed signals but independently certified; the two may
	diverge on degenerate ties.
*/

const hcmEpsilon = 1e-9

type HCMCloser struct {
	ir int
}

func NewHCMCloser() *HCMCloser {
	return &HCMCloser{ir: 1}
}

func (h *HCMCloser) Advance(r *Residue, emit EmitFunc) error {
	for {
		iz := r.Len()
		if iz-h.ir >= 3 {
			dx := math.Abs(r.At(iz-1).Value - r.At(iz-2).Value)
			dy := math.Abs(r.At(iz-2).Value - r.At(iz-3).Value)
			if dx+hcmEpsilon >= dy {
				// loop closed between the two points under the top
				if err := emit(fullCycle(r.At(iz-3), r.At(iz-2))); err != nil {
					return err
				}
				r.RemovePair(iz - 3)
				continue
			}
		} else if iz-h.ir == 2 {
			// the range under the top ends at the residuum
			// boundary: it can never close, extend the memory
			dx := math.Abs(r.At(iz-1).Value - r.At(iz-2).Value)
			dy := math.Abs(r.At(iz-2).Value - r.At(iz-3).Value)
			if dx+hcmEpsilon >= dy {
				h.ir++
				continue
			}
		}
		return nil
	}
}

func (h *HCMCloser) Reset() { h.ir = 1 }

func (h *HCMCloser) Type() string { return "HCM" }
