package plugin_test

import (
	"errors"
	"testing"

	Rp "github.com/mkarrer/rainflow/plugin"
	Rt "github.com/mkarrer/rainflow/types"
)

func makeStore(t *testing.T) *Rp.BadgerStore {
	t.Helper()
	store, err := Rp.NewBadgerStore(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("could not open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	})
	return store
}

func makePoint(v float64, class int, pos uint64) Rt.TurningPoint {
	return Rt.TurningPoint{Value: v, Class: class, Position: pos}
}

func TestBadgerStore_Append(t *testing.T) {
	store := makeStore(t)

	t.Run("Points buffer until the batch size", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			assertError(t, store.Append(makePoint(float64(i), i, uint64(i))), nil)
		}
		assertInt(t, len(store.Buffer), 3)
	})

	t.Run("Batch size triggers a flush", func(t *testing.T) {
		assertError(t, store.Append(makePoint(3, 3, 3)), nil)
		assertInt(t, len(store.Buffer), 0)
	})

	t.Run("GetByPosition round-trips a point", func(t *testing.T) {
		got, err := store.GetByPosition(2)
		assertError(t, err, nil)
		assertFloat64(t, got.Value, 2)
		assertInt(t, got.Class, 2)
	})

	t.Run("Missing position is an error", func(t *testing.T) {
		_, err := store.GetByPosition(999)
		assertGotError(t, err)
	})
}

func TestBadgerStore_StoredDamage(t *testing.T) {
	store := makeStore(t)
	assertError(t, store.Append(makePoint(5.5, 5, 42)), nil)

	assertError(t, store.AddStoredDamage(42, 0.25), nil)
	assertError(t, store.AddStoredDamage(42, 0.5), nil)

	d, err := store.StoredDamage(42)
	assertError(t, err, nil)
	assertFloat64(t, d, 0.75)

	t.Run("Damage on a missing point is an error", func(t *testing.T) {
		assertGotError(t, store.AddStoredDamage(999, 1.0))
	})
}

func TestBadgerStore_Cycles(t *testing.T) {
	store := makeStore(t)

	cycles := []*Rt.Cycle{
		{From: 2, To: 1, FromPosition: 1, ToPosition: 3, Weight: 1.0},
		{From: 4, To: 2, FromPosition: 2, ToPosition: 8, Weight: 1.0},
		{From: 0, To: 5, FromPosition: 5, ToPosition: 20, Weight: 0.5},
	}
	assertError(t, store.WriteBatch(cycles[:2]), nil)
	assertError(t, store.WriteCycle(cycles[2]), nil)

	t.Run("QueryRange filters by closing position", func(t *testing.T) {
		got, err := store.QueryRange(0, 10)
		assertError(t, err, nil)
		assertInt(t, len(got), 2)
	})

	t.Run("Full range returns everything", func(t *testing.T) {
		got, err := store.QueryRange(0, 100)
		assertError(t, err, nil)
		assertInt(t, len(got), 3)
	})

	t.Run("Empty range returns nothing", func(t *testing.T) {
		got, err := store.QueryRange(50, 60)
		assertError(t, err, nil)
		assertInt(t, len(got), 0)
	})
}

func TestBadgerStore_Reopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Rp.NewBadgerStore(dir, 2)
	if err != nil {
		t.Fatalf("could not open store: %v", err)
	}
	assertError(t, store.Append(makePoint(7, 7, 7)), nil)
	assertError(t, store.Close(), nil)

	reopened, err := Rp.NewBadgerStore(dir, 2)
	if err != nil {
		t.Fatalf("could not reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetByPosition(7)
	assertError(t, err, nil)
	assertFloat64(t, got.Value, 7)
}

func TestPointCodec(t *testing.T) {
	sp := &Rp.StoredPoint{Point: makePoint(3.3, 2, 11), Damage: 0.125}
	got, err := Rp.PointDecode(Rp.PointEncode(sp))
	assertError(t, err, nil)
	assertFloat64(t, got.Point.Value, 3.3)
	assertFloat64(t, got.Damage, 0.125)
}

func TestKeys(t *testing.T) {
	t.Run("Point keys sort by position", func(t *testing.T) {
		a := Rp.PointKey(1)
		b := Rp.PointKey(256)
		if string(a) >= string(b) {
			t.Errorf("expected key for position 1 to sort before 256")
		}
	})

	t.Run("Cycle keys sort by closing position", func(t *testing.T) {
		a := Rp.CycleKey(&Rt.Cycle{FromPosition: 9, ToPosition: 10})
		b := Rp.CycleKey(&Rt.Cycle{FromPosition: 1, ToPosition: 300})
		if string(a) >= string(b) {
			t.Errorf("expected earlier closing position to sort first")
		}
	})
}

///////// HELPERS

func assertError(t testing.TB, got, want error) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Errorf("got error %q want none", got)
		}
		return
	}
	if !errors.Is(got, want) {
		t.Errorf("got error %q want %q", got, want)
	}
}

func assertGotError(t testing.TB, got error) {
	t.Helper()
	if got == nil {
		t.Errorf("Expected an error but got %q", got)
	}
}

func assertInt(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("did not get correct value, got %d, want %d", got, want)
	}
}

func assertString(t testing.TB, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func assertFloat64(t testing.TB, got, want float64) {
	t.Helper()
	if got != want {
		t.Errorf("did not get correct value, got %v, want %v", got, want)
	}
}
