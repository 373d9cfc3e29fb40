package rainflow

import (
	"fmt"

	Rt "github.com/mkarrer/rainflow/types"
)

// passThroughResidueCap bounds the residue when classification is off.
const passThroughResidueCap = 64

// Residue is the bounded, order-preserving buffer of unclosed
// turning points. It is owned exclusively by one counting session;
// only the cycle-closing strategy and the finalizer mutate it.
// Except for a trailing interim entry appended during finalize,
// consecutive entries alternate in slope sign.
type Residue struct {
	pts []Rt.TurningPoint
	max int
}

// NewResidue sizes the buffer deterministically up front:
// 2*classCount+1, or a small fixed size in pass-through mode.
func NewResidue(classCount int) *Residue {
	c := 2*classCount + 1
	if classCount == 0 {
		c = passThroughResidueCap
	}
	return NewResidueWithCap(c)
}

// NewResidueWithCap builds a residue with an explicit capacity.
// The Repeated finalize policy uses this for its doubled copy.
func NewResidueWithCap(c int) *Residue {
	return &Residue{pts: make([]Rt.TurningPoint, 0, c), max: c}
}

func (r *Residue) Len() int { return len(r.pts) }

func (r *Residue) At(i int) Rt.TurningPoint { return r.pts[i] }

// Push appends a confirmed turning point. Exceeding the capacity
// is a contract violation, not a usage error.
func (r *Residue) Push(tp Rt.TurningPoint) error {
	if len(r.pts) >= r.max {
		return fmt.Errorf("residue overflow at %d entries: %w", r.max, ErrDataInconsistent)
	}
	r.pts = append(r.pts, tp)
	return nil
}

// ReplaceLast overwrites the newest entry.
func (r *Residue) ReplaceLast(tp Rt.TurningPoint) {
	r.pts[len(r.pts)-1] = tp
}

// RemovePair removes exactly the two entries at i and i+1,
// keeping the relative order of everything else. O(removed).
func (r *Residue) RemovePair(i int) {
	r.pts = append(r.pts[:i], r.pts[i+2:]...)
}

// RemoveAt removes the single entry at i.
func (r *Residue) RemoveAt(i int) {
	r.pts = append(r.pts[:i], r.pts[i+1:]...)
}

// Points returns a copy of the current contents.
func (r *Residue) Points() []Rt.TurningPoint {
	out := make([]Rt.TurningPoint, len(r.pts))
	copy(out, r.pts)
	return out
}

// Reset empties the buffer but keeps its capacity.
func (r *Residue) Reset() { r.pts = r.pts[:0] }
