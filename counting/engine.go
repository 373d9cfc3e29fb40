package rainflow

import (
	"fmt"

	Rt "github.com/mkarrer/rainflow/types"
)

// EmitFunc receives each closed cycle as the strategy produces it.
type EmitFunc func(c Rt.Cycle) error

// CycleCloser is the cycle-closing strategy. It is invoked once per
// newly confirmed turning point (the point is already the residue
// tail) and may close zero, one, or several cycles per invocation.
// The three variants are independently evolved implementations that
// share nothing beyond this contract.
type CycleCloser interface {
	Advance(r *Residue, emit EmitFunc) error
	Reset()
	Type() string
}

// NewCycleCloser selects the strategy at construction time.
// classified tells class-index strategies whether the Class field
// carries real quantization or raw values must be compared instead.
func NewCycleCloser(m Rt.Method, classified bool) (CycleCloser, error) {
	switch m {
	case Rt.FourPoint:
		return &FourPointCloser{classified: classified}, nil
	case Rt.HCM:
		return NewHCMCloser(), nil
	case Rt.ASTM:
		return &ASTMCloser{classified: classified}, nil
	}
	return nil, fmt.Errorf("unknown cycle-closing method %d: %w", m, ErrInvalidArgument)
}

// level is the comparison axis: quantized class index when
// classification is on, the raw value otherwise.
func level(tp Rt.TurningPoint, classified bool) float64 {
	if classified {
		return float64(tp.Class)
	}
	return tp.Value
}

// fullCycle builds a full-weight cycle from the inner pair,
// earlier point first.
func fullCycle(from, to Rt.TurningPoint) Rt.Cycle {
	return cycleWeighted(from, to, 1.0)
}

func cycleWeighted(from, to Rt.TurningPoint, w float64) Rt.Cycle {
	return Rt.Cycle{
		From:         from.Class,
		To:           to.Class,
		FromValue:    from.Value,
		ToValue:      to.Value,
		FromPosition: from.Position,
		ToPosition:   to.Position,
		Weight:       w,
	}
}
