package rainflow

import (
	"fmt"
	"math"
)

// MaxClassCount is the upper bound on the class axis.
const MaxClassCount = 1024

// Quantizer maps a raw value to a class index.
// Count == 0 disables classification entirely (pass-through mode):
// the strategies then compare raw values and no matrix exists.
type Quantizer struct {
	Width  float64
	Offset float64
	Count  int
}

// NewQuantizer validates the class axis parameters.
func NewQuantizer(count int, width, offset float64) (*Quantizer, error) {
	if count < 0 || count > MaxClassCount {
		return nil, fmt.Errorf("class count %d outside [0,%d]: %w", count, MaxClassCount, ErrInvalidArgument)
	}
	if count > 0 && width <= 0 {
		return nil, fmt.Errorf("class width %v must be positive: %w", width, ErrInvalidArgument)
	}
	return &Quantizer{Width: width, Offset: offset, Count: count}, nil
}

// Enabled reports whether classification is active.
func (q *Quantizer) Enabled() bool { return q.Count > 0 }

// ClassIndex returns floor((value-offset)/width) clamped to [0,Count-1].
// Values below the offset are out of range; values above the top
// class clamp to the highest class.
func (q *Quantizer) ClassIndex(v float64) (int, error) {
	if q.Count == 0 {
		return 0, nil
	}
	if v < q.Offset {
		return 0, fmt.Errorf("value %v below class offset %v: %w", v, q.Offset, ErrDataOutOfRange)
	}
	i := int(math.Floor((v - q.Offset) / q.Width))
	if i >= q.Count {
		i = q.Count - 1
	}
	return i, nil
}

// Center returns the value at the middle of a class interval.
func (q *Quantizer) Center(class int) float64 {
	return q.Offset + q.Width*(float64(class)+0.5)
}
