package plugin

/*
	Goodman

	Mean-stress correction for cycle amplitudes:
	a tensile mean makes a cycle more damaging, a compressive
	mean less. Sa' = Sa + M * Sm, clamped at zero.

	~~~ Plugin Reference Implementation ~~~
*/

import (
	"fmt"
	"math"
)

// DefaultMeanSensitivity is a typical steel value for M.
const DefaultMeanSensitivity = 0.3

type GoodmanPlugin struct {
	Sensitivity float64 // mean-stress sensitivity M
}

func NewGoodmanPlugin(m float64) *GoodmanPlugin {
	return &GoodmanPlugin{Sensitivity: m}
}

// Transform maps (amplitude, mean) to the corrected amplitude.
func (g *GoodmanPlugin) Transform(sa, sm float64) (float64, error) {
	if sa < 0 || math.IsNaN(sa) || math.IsNaN(sm) {
		return 0, fmt.Errorf("invalid amplitude/mean pair (%v, %v)", sa, sm)
	}
	out := sa + g.Sensitivity*sm
	if out < 0 {
		out = 0
	}
	return out, nil
}

func (g *GoodmanPlugin) Type() string { return "fkm_goodman" }
