package rainflow

/*
	4-point method (default strategy)

	Looks at the last four residue entries A,B,C,D in stream order.
	When the inner swing B->C is fully enclosed, in amplitude, by the
	outer swing A->D, the inner pair closes as one full cycle and is
	spliced out, joining A directly to D. Ties favor closing.
	Comparison happens on quantized class indices, never raw values.
*/

type FourPointCloser struct {
	classified bool
}

func (fp *FourPointCloser) Advance(r *Residue, emit EmitFunc) error {
	for r.Len() >= 4 {
		n := r.Len()
		a := level(r.At(n-4), fp.classified)
		b := r.At(n - 3)
		c := r.At(n - 2)
		d := level(r.At(n-1), fp.classified)

		bLo, bHi := ordered(level(b, fp.classified), level(c, fp.classified))
		aLo, aHi := ordered(a, d)
		if aLo > bLo || bHi > aHi {
			return nil
		}
		if err := emit(fullCycle(b, c)); err != nil {
			return err
		}
		r.RemovePair(n - 3)
	}
	return nil
}

func (fp *FourPointCloser) Reset() {}

func (fp *FourPointCloser) Type() string { return "4-point" }

func ordered(x, y float64) (float64, float64) {
	if x > y {
		return y, x
	}
	return x, y
}
