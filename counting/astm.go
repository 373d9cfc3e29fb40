package rainflow

import "math"

/*
	ASTM E1049 3-point method

	Compares the two ranges formed by the last three residue points:
	Y (the earlier range) and X (the later one). When X >= Y the
	earlier range closes as one full cycle -- unless closing it would
	consume the very first residue element, in which case it counts
	as a half cycle and only that first point is removed.
*/

type ASTMCloser struct {
	classified bool
}

func (as *ASTMCloser) Advance(r *Residue, emit EmitFunc) error {
	for r.Len() >= 3 {
		n := r.Len()
		p0 := r.At(n - 3)
		p1 := r.At(n - 2)
		p2 := r.At(n - 1)

		x := math.Abs(level(p2, as.classified) - level(p1, as.classified))
		y := math.Abs(level(p1, as.classified) - level(p0, as.classified))
		if x < y {
			return nil
		}
		if n == 3 {
			// Y starts at the residue head: half cycle, drop one point
			if err := emit(cycleWeighted(p0, p1, 0.5)); err != nil {
				return err
			}
			r.RemoveAt(0)
			continue
		}
		if err := emit(fullCycle(p0, p1)); err != nil {
			return err
		}
		r.RemovePair(n - 3)
	}
	return nil
}

func (as *ASTMCloser) Reset() {}

func (as *ASTMCloser) Type() string { return "ASTM" }
