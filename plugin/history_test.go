package plugin_test

import (
	"testing"

	Rp "github.com/mkarrer/rainflow/plugin"
)

func TestHistoryBuffer(t *testing.T) {
	hb := Rp.NewHistoryBuffer()

	t.Run("Increments book against their position", func(t *testing.T) {
		assertError(t, hb.WriteIncrement(3, 0.25), nil)
		assertError(t, hb.WriteIncrement(3, 0.25), nil)
		assertError(t, hb.WriteIncrement(8, 0.5), nil)

		assertFloat64(t, hb.At(3), 0.5)
		assertFloat64(t, hb.At(8), 0.5)
		assertFloat64(t, hb.Total(), 1.0)
	})

	t.Run("Unbooked positions read zero", func(t *testing.T) {
		assertFloat64(t, hb.At(99), 0)
	})

	t.Run("Flush marks the history complete", func(t *testing.T) {
		if hb.Flushed() {
			t.Errorf("expected an unflushed buffer before finalize")
		}
		assertError(t, hb.Flush(), nil)
		if !hb.Flushed() {
			t.Errorf("expected the buffer to be flushed")
		}
	})
}
