package rainflow

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// RainflowMatrix is the 2-D histogram of closed-cycle counts,
// indexed by (from-class, to-class). The diagonal is always zero:
// turning points alternate, so a self-transition cycle is not
// representable.
type RainflowMatrix struct {
	N     int
	Cells []float64 // row-major, N*N
}

func NewRainflowMatrix(n int) *RainflowMatrix {
	return &RainflowMatrix{N: n, Cells: make([]float64, n*n)}
}

func (m *RainflowMatrix) At(from, to int) float64 {
	return m.Cells[from*m.N+to]
}

// Add accumulates one cycle count. A diagonal hit is a structural
// impossibility and therefore a defect, not a usage error.
func (m *RainflowMatrix) Add(from, to int, w float64) error {
	if from < 0 || from >= m.N || to < 0 || to >= m.N {
		return fmt.Errorf("matrix cell (%d,%d) outside %dx%d: %w", from, to, m.N, m.N, ErrDataInconsistent)
	}
	if from == to {
		return fmt.Errorf("self-transition cycle (%d,%d): %w", from, to, ErrDataInconsistent)
	}
	m.Cells[from*m.N+to] += w
	return nil
}

// Sum is the total count over all cells, in full-cycle units.
func (m *RainflowMatrix) Sum() float64 {
	return floats.Sum(m.Cells)
}

// MakeSymmetric folds the lower triangle onto the upper:
// m[i][j] += m[j][i]; m[j][i] = 0 for all i<j. Afterwards no entry
// remains below the diagonal.
func (m *RainflowMatrix) MakeSymmetric() {
	for i := 0; i < m.N; i++ {
		for j := i + 1; j < m.N; j++ {
			m.Cells[i*m.N+j] += m.Cells[j*m.N+i]
			m.Cells[j*m.N+i] = 0
		}
	}
}

// Clone returns an independent copy.
func (m *RainflowMatrix) Clone() *RainflowMatrix {
	out := NewRainflowMatrix(m.N)
	copy(out.Cells, m.Cells)
	return out
}

// RangeHistogram is a 1-D counting sink over class distances or
// class levels, shared by the range-pair and level-crossing counters.
type RangeHistogram struct {
	Counts []float64
}

func NewRangeHistogram(n int) *RangeHistogram {
	return &RangeHistogram{Counts: make([]float64, n)}
}

func (h *RangeHistogram) Add(i int, w float64) error {
	if i < 0 || i >= len(h.Counts) {
		return fmt.Errorf("histogram bin %d outside [0,%d): %w", i, len(h.Counts), ErrDataInconsistent)
	}
	h.Counts[i] += w
	return nil
}

func (h *RangeHistogram) Sum() float64 {
	return floats.Sum(h.Counts)
}

// Clone returns an independent copy.
func (h *RangeHistogram) Clone() *RangeHistogram {
	out := NewRangeHistogram(len(h.Counts))
	copy(out.Counts, h.Counts)
	return out
}
