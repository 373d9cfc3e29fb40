package rainflow_test

import (
	"os"
	"path/filepath"
	"testing"

	Rc "github.com/mkarrer/rainflow/counting"
	Rt "github.com/mkarrer/rainflow/types"
)

const testConfigJSON = `[
  {
    "id": "bench-axle",
    "source": "testdata/axle.txt",
    "class_count": 64,
    "class_width": 2.5,
    "class_offset": -80,
    "hysteresis": 2.4,
    "method": "4-point",
    "policy": "repeated",
    "count_matrix": true,
    "count_damage": true,
    "woehler": {"sx": 100, "nx": 1000000, "k": -5, "sd": 50, "nd": 100000000, "k2": -7},
    "transformer": "fkm_goodman",
    "listen": ":8090"
  }
]`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rainflow.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	return path
}

func TestLoadConfigFileName(t *testing.T) {
	t.Run("Loads a full counting run", func(t *testing.T) {
		path := writeConfig(t, testConfigJSON)
		configs, err := Rc.LoadConfigFileName(path)
		assertError(t, err, nil)
		assertInt(t, len(configs), 1)

		cf := configs[0]
		assertString(t, cf.ID, "bench-axle")
		assertInt(t, cf.ClassCount, 64)
		assertFloat64(t, cf.ClassWidth, 2.5)
		assertFloat64(t, cf.Hysteresis, 2.4)
		assertString(t, cf.Policy, "repeated")
		assertString(t, cf.Transformer, "fkm_goodman")
		assertFloat64(t, cf.Woehler.SX, 100)
	})

	t.Run("Missing file is an error", func(t *testing.T) {
		_, err := Rc.LoadConfigFileName("does-not-exist.json")
		assertGotError(t, err)
	})

	t.Run("Empty file fails validation", func(t *testing.T) {
		path := writeConfig(t, "")
		_, err := Rc.LoadConfigFileName(path)
		assertGotError(t, err)
	})

	t.Run("Malformed JSON is an error", func(t *testing.T) {
		path := writeConfig(t, "{not json")
		_, err := Rc.LoadConfigFileName(path)
		assertGotError(t, err)
	})
}

func TestParseMethod(t *testing.T) {
	cases := []struct {
		in   string
		want Rt.Method
	}{
		{"", Rt.FourPoint},
		{"4-point", Rt.FourPoint},
		{"fourpoint", Rt.FourPoint},
		{"HCM", Rt.HCM},
		{"astm", Rt.ASTM},
	}
	for _, c := range cases {
		got, err := Rc.ParseMethod(c.in)
		assertError(t, err, nil)
		if got != c.want {
			t.Errorf("ParseMethod(%q) = %d, want %d", c.in, got, c.want)
		}
	}

	t.Run("Unknown method is invalid", func(t *testing.T) {
		_, err := Rc.ParseMethod("5-point")
		assertError(t, err, Rc.ErrInvalidArgument)
	})
}

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in   string
		want Rt.Policy
	}{
		{"", Rt.PolicyIgnore},
		{"ignore", Rt.PolicyIgnore},
		{"nofinalize", Rt.PolicyNoFinalize},
		{"discard", Rt.PolicyDiscard},
		{"halfcycles", Rt.PolicyHalfCycles},
		{"fullcycles", Rt.PolicyFullCycles},
		{"clormann-seeger", Rt.PolicyClormannSeeger},
		{"repeated", Rt.PolicyRepeated},
		{"rp-din45667", Rt.PolicyRPDIN45667},
	}
	for _, c := range cases {
		got, err := Rc.ParsePolicy(c.in)
		assertError(t, err, nil)
		if got != c.want {
			t.Errorf("ParsePolicy(%q) = %d, want %d", c.in, got, c.want)
		}
	}

	t.Run("Unknown policy is invalid", func(t *testing.T) {
		_, err := Rc.ParsePolicy("shrug")
		assertError(t, err, Rc.ErrInvalidArgument)
	})
}

func TestSessionFromConfig(t *testing.T) {
	path := writeConfig(t, testConfigJSON)
	configs, err := Rc.LoadConfigFileName(path)
	assertError(t, err, nil)

	s, err := Rc.SessionFromConfig(configs[0])
	assertError(t, err, nil)
	assertError(t, s.Init(), nil)

	if s.State() != Rt.Init {
		t.Errorf("expected Init, got state %d", s.State())
	}
	assertInt(t, s.Config.ClassCount, 64)
	if !s.Config.CountMatrix {
		t.Errorf("expected the matrix sink to be enabled")
	}

	t.Run("Bad method never builds a session", func(t *testing.T) {
		cf := configs[0]
		cf.Method = "bogus"
		_, err := Rc.SessionFromConfig(cf)
		assertError(t, err, Rc.ErrInvalidArgument)
	})
}
