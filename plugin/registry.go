package plugin

import (
	"fmt"

	Rt "github.com/mkarrer/rainflow/types"
)

// Transformers is a global map of AmplitudeTransformer plugins.
var Transformers = map[string]func() Rt.AmplitudeTransformer{
	"fkm_goodman": func() Rt.AmplitudeTransformer {
		return NewGoodmanPlugin(DefaultMeanSensitivity)
	},
}

func TransformerLookup(name string) (Rt.AmplitudeTransformer, error) {
	factory, ok := Transformers[name]
	if !ok {
		return nil, fmt.Errorf("unknown transformer: %s", name)
	}
	return factory(), nil
}
