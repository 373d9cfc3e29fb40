package rainflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	Rt "github.com/mkarrer/rainflow/types"
)

// ConfigFile is one counting run as configured on disk.
type ConfigFile struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"` // file path or URL of the load series
	ClassCount  int     `json:"class_count"`
	ClassWidth  float64 `json:"class_width"`
	ClassOffset float64 `json:"class_offset"`
	Hysteresis  float64 `json:"hysteresis"`
	Method      string  `json:"method"`
	Policy      string  `json:"policy"`
	Margin      bool    `json:"enforce_margin"`

	CountMatrix         bool `json:"count_matrix"`
	CountRangePairs     bool `json:"count_range_pairs"`
	CountLevelCrossings bool `json:"count_level_crossings"`
	CountDamage         bool `json:"count_damage"`

	Woehler struct {
		SX       float64 `json:"sx"`
		NX       float64 `json:"nx"`
		K        float64 `json:"k"`
		SD       float64 `json:"sd"`
		ND       float64 `json:"nd"`
		K2       float64 `json:"k2"`
		Omission float64 `json:"omission"`
	} `json:"woehler"`

	Transformer string `json:"transformer"` // amplitude transform plugin name
	BadgerPath  string `json:"badger_path"` // turning-point store location
	Listen      string `json:"listen"`      // display server address
}

// LoadConfigFileName pulls a given filename config off local disk
// Validation is performed on the file before opening
func LoadConfigFileName(filename string) ([]ConfigFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// validation
	err = validateLoad(file)
	if err != nil {
		slog.Error("Validation failed", slog.Any("Error", err))
		return nil, err
	}

	return LoadConfig(file)
}

func validateLoad(file *os.File) error {
	// validate file
	info, err := file.Stat()
	if err != nil {
		slog.Error("could not stat file")
		return err
	}

	// validate size
	if info.Size() == 0 {
		slog.Error("file is empty")
		return errors.New("file is empty")
	}

	return nil
}

func LoadConfig(file *os.File) ([]ConfigFile, error) {
	// open file
	cf, err := os.Open(file.Name())
	if err != nil {
		slog.Error("could not open file")
		return nil, err
	}
	defer cf.Close()

	// decode json
	var config []ConfigFile
	decoder := json.NewDecoder(cf)
	if err := decoder.Decode(&config); err != nil {
		slog.Error("could not decode file")
		return nil, err
	}

	return config, nil
}

// ParseMethod maps a config string onto a cycle-closing strategy.
// An empty string selects the 4-point default.
func ParseMethod(s string) (Rt.Method, error) {
	switch strings.ToLower(s) {
	case "", "4-point", "fourpoint", "4pt":
		return Rt.FourPoint, nil
	case "hcm":
		return Rt.HCM, nil
	case "astm":
		return Rt.ASTM, nil
	}
	return 0, fmt.Errorf("unknown method %q: %w", s, ErrInvalidArgument)
}

// ParsePolicy maps a config string onto a finalize policy.
// An empty string selects Ignore.
func ParsePolicy(s string) (Rt.Policy, error) {
	switch strings.ToLower(s) {
	case "", "ignore", "none":
		return Rt.PolicyIgnore, nil
	case "nofinalize":
		return Rt.PolicyNoFinalize, nil
	case "discard":
		return Rt.PolicyDiscard, nil
	case "halfcycles":
		return Rt.PolicyHalfCycles, nil
	case "fullcycles":
		return Rt.PolicyFullCycles, nil
	case "clormann-seeger", "clormannseeger":
		return Rt.PolicyClormannSeeger, nil
	case "repeated":
		return Rt.PolicyRepeated, nil
	case "rp-din45667", "din45667":
		return Rt.PolicyRPDIN45667, nil
	}
	return 0, fmt.Errorf("unknown finalize policy %q: %w", s, ErrInvalidArgument)
}

// SessionFromConfig builds (but does not Init) a session from one
// config stanza. Collaborator plugins are wired by the caller.
func SessionFromConfig(cf ConfigFile) (*Session, error) {
	method, err := ParseMethod(cf.Method)
	if err != nil {
		return nil, err
	}

	cfg := Config{
		ClassCount:          cf.ClassCount,
		ClassWidth:          cf.ClassWidth,
		ClassOffset:         cf.ClassOffset,
		Hysteresis:          cf.Hysteresis,
		Method:              method,
		Margin:              cf.Margin,
		CountMatrix:         cf.CountMatrix,
		CountRangePairs:     cf.CountRangePairs,
		CountLevelCrossings: cf.CountLevelCrossings,
		CountDamage:         cf.CountDamage,
		Woehler: Rt.WoehlerParams{
			SX:       cf.Woehler.SX,
			NX:       cf.Woehler.NX,
			K:        cf.Woehler.K,
			SD:       cf.Woehler.SD,
			ND:       cf.Woehler.ND,
			K2:       cf.Woehler.K2,
			Omission: cf.Woehler.Omission,
		},
	}
	return NewSession(cfg), nil
}
