package rainflow_test

import (
	"math"
	"testing"

	Rc "github.com/mkarrer/rainflow/counting"
	Rt "github.com/mkarrer/rainflow/types"
)

func makeWoehler() Rt.WoehlerParams {
	return Rt.WoehlerParams{
		SX: 100, NX: 1e6, K: -5,
		SD: 50, ND: 1e8, K2: -7,
	}
}

func TestNewWoehlerCurve(t *testing.T) {
	t.Run("Valid parameters build a curve", func(t *testing.T) {
		_, err := Rc.NewWoehlerCurve(makeWoehler())
		assertError(t, err, nil)
	})

	t.Run("Non-positive primary point is invalid", func(t *testing.T) {
		p := makeWoehler()
		p.SX = 0
		_, err := Rc.NewWoehlerCurve(p)
		assertError(t, err, Rc.ErrInvalidArgument)
	})

	t.Run("Zero slope is invalid", func(t *testing.T) {
		p := makeWoehler()
		p.K = 0
		_, err := Rc.NewWoehlerCurve(p)
		assertError(t, err, Rc.ErrInvalidArgument)
	})

	t.Run("Secondary breakpoint above the primary is invalid", func(t *testing.T) {
		p := makeWoehler()
		p.SD = 200
		_, err := Rc.NewWoehlerCurve(p)
		assertError(t, err, Rc.ErrInvalidArgument)
	})

	t.Run("Negative omission threshold is invalid", func(t *testing.T) {
		p := makeWoehler()
		p.Omission = -1
		_, err := Rc.NewWoehlerCurve(p)
		assertError(t, err, Rc.ErrInvalidArgument)
	})
}

func TestWoehlerCurve_Damage(t *testing.T) {
	w, err := Rc.NewWoehlerCurve(makeWoehler())
	assertError(t, err, nil)

	t.Run("At the primary point damage is 1/NX", func(t *testing.T) {
		assertFloat64Near(t, w.Damage(100), 1e-6)
	})

	t.Run("Above the primary point the primary slope applies", func(t *testing.T) {
		// sa = 2*SX with |k| = 5: damage scales by 2^5
		assertFloat64Near(t, w.Damage(200), 32e-6)
	})

	t.Run("Between SD and SX the secondary slope applies", func(t *testing.T) {
		want := math.Pow(0.6, 7) * 1e-6
		assertFloat64Near(t, w.Damage(60), want)
	})

	t.Run("At or below the fatigue strength damage is zero", func(t *testing.T) {
		assertFloat64(t, w.Damage(50), 0)
		assertFloat64(t, w.Damage(10), 0)
	})

	t.Run("Non-positive amplitude is zero", func(t *testing.T) {
		assertFloat64(t, w.Damage(0), 0)
		assertFloat64(t, w.Damage(-5), 0)
	})

	t.Run("Omission threshold suppresses small amplitudes", func(t *testing.T) {
		p := makeWoehler()
		p.Omission = 70
		wo, err := Rc.NewWoehlerCurve(p)
		assertError(t, err, nil)
		assertFloat64(t, wo.Damage(60), 0)
		if wo.Damage(80) <= 0 {
			t.Errorf("expected damage above the omission threshold")
		}
	})

	t.Run("Missing secondary breakpoint collapses onto the primary", func(t *testing.T) {
		p := makeWoehler()
		p.SD = 0
		wo, err := Rc.NewWoehlerCurve(p)
		assertError(t, err, nil)
		assertFloat64(t, wo.Damage(60), 0)
		if wo.Damage(120) <= 0 {
			t.Errorf("expected damage above the primary point")
		}
	})

	t.Run("Extreme amplitude ratios stay finite", func(t *testing.T) {
		d := w.Damage(1e12)
		if math.IsInf(d, 0) || math.IsNaN(d) {
			t.Errorf("expected finite damage, got %v", d)
		}
	})
}
