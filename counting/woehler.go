package rainflow

import (
	"fmt"
	"math"

	Rt "github.com/mkarrer/rainflow/types"
)

// WoehlerCurve evaluates pseudo-damage for one full cycle of a
// given amplitude. All evaluation happens in the log domain so
// extreme amplitude ratios neither overflow nor underflow.
type WoehlerCurve struct {
	P Rt.WoehlerParams

	lnSX float64
	lnNX float64
}

// NewWoehlerCurve validates the S-N parameters. A missing secondary
// breakpoint (SD <= 0) collapses onto the primary point, so the
// secondary branch never fires.
func NewWoehlerCurve(p Rt.WoehlerParams) (*WoehlerCurve, error) {
	if p.SX <= 0 || p.NX <= 0 {
		return nil, fmt.Errorf("woehler primary point (SX=%v, NX=%v) must be positive: %w", p.SX, p.NX, ErrInvalidArgument)
	}
	if p.K == 0 {
		return nil, fmt.Errorf("woehler slope k must be nonzero: %w", ErrInvalidArgument)
	}
	if p.SD > p.SX {
		return nil, fmt.Errorf("secondary breakpoint SD=%v above SX=%v: %w", p.SD, p.SX, ErrInvalidArgument)
	}
	if p.SD <= 0 {
		p.SD = p.SX
		p.K2 = p.K
	}
	if p.Omission < 0 {
		return nil, fmt.Errorf("omission threshold %v must not be negative: %w", p.Omission, ErrInvalidArgument)
	}
	return &WoehlerCurve{
		P:    p,
		lnSX: math.Log(p.SX),
		lnNX: math.Log(p.NX),
	}, nil
}

// Damage returns the pseudo-damage of one full cycle at amplitude sa.
func (w *WoehlerCurve) Damage(sa float64) float64 {
	if sa <= 0 || sa <= w.P.Omission {
		return 0
	}
	lnSa := math.Log(sa)
	switch {
	case sa > w.P.SX:
		return math.Exp(math.Abs(w.P.K)*(lnSa-w.lnSX) - w.lnNX)
	case sa > w.P.SD:
		return math.Exp(math.Abs(w.P.K2)*(lnSa-w.lnSX) - w.lnNX)
	default:
		// below fatigue strength
		return 0
	}
}
