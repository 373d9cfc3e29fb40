package rainflow

import (
	"fmt"
	"log/slog"
	"math"

	Rt "github.com/mkarrer/rainflow/types"
)

// Config is the immutable public tuning of a counting session.
// It is set once at construction; the mutable algorithm state lives
// in the Session itself.
type Config struct {
	ClassCount  int     // 0 disables classification (pass-through)
	ClassWidth  float64 // must be positive when ClassCount > 0
	ClassOffset float64
	Hysteresis  float64 // must not be negative
	Method      Rt.Method
	Margin      bool // force first and last sample as turning points

	CountMatrix         bool
	CountRangePairs     bool
	CountLevelCrossings bool
	CountDamage         bool
	Woehler             Rt.WoehlerParams
}

// Session is one rainflow counting run. It owns all of its state
// exclusively: it is not safe for concurrent mutation, but
// independent sessions run fully in parallel with zero coordination.
//
// The optional collaborators are held by reference and individually
// nil-able; nothing here depends on their presence.
type Session struct {
	Config Config

	// collaborators, wired before Init
	Store     Rt.TurningPointStore
	Transform Rt.AmplitudeTransformer
	History   Rt.DamageHistorian

	quant   *Quantizer
	filter  *TPFilter
	residue *Residue
	closer  CycleCloser
	curve   *WoehlerCurve

	matrix     *RainflowMatrix
	rangePairs *RangeHistogram
	levelCross *RangeHistogram

	damage         float64
	damagePreFinal float64
	damageMemo     map[int]float64
	cycles         float64
	tpoints        uint64

	state     Rt.CountingState
	lastErr   error
	pos       uint64
	finalized bool
}

// NewSession returns a session in Init0. Call Init before feeding.
func NewSession(cfg Config) *Session {
	return &Session{Config: cfg, state: Rt.Init0}
}

// Init validates the configuration and allocates the engine state,
// moving the session from Init0 to Init.
func (s *Session) Init() error {
	if s.state != Rt.Init0 {
		return s.fail(fmt.Errorf("init in state %d: %w", s.state, ErrInvalidArgument))
	}
	if s.Config.Hysteresis < 0 {
		return s.fail(fmt.Errorf("hysteresis %v must not be negative: %w", s.Config.Hysteresis, ErrInvalidArgument))
	}

	quant, err := NewQuantizer(s.Config.ClassCount, s.Config.ClassWidth, s.Config.ClassOffset)
	if err != nil {
		return s.fail(err)
	}
	s.quant = quant

	if !quant.Enabled() && (s.Config.CountMatrix || s.Config.CountRangePairs || s.Config.CountLevelCrossings) {
		return s.fail(fmt.Errorf("matrix and histogram sinks need classification: %w", ErrUnsupported))
	}

	closer, err := NewCycleCloser(s.Config.Method, quant.Enabled())
	if err != nil {
		return s.fail(err)
	}
	s.closer = closer

	if s.Config.CountDamage {
		curve, err := NewWoehlerCurve(s.Config.Woehler)
		if err != nil {
			return s.fail(err)
		}
		s.curve = curve
		s.damageMemo = make(map[int]float64)
	}

	s.filter = NewTPFilter(s.Config.Hysteresis, s.Config.Margin)
	s.residue = NewResidue(s.Config.ClassCount)
	if s.Config.CountMatrix {
		s.matrix = NewRainflowMatrix(s.Config.ClassCount)
	}
	if s.Config.CountRangePairs {
		s.rangePairs = NewRangeHistogram(s.Config.ClassCount)
	}
	if s.Config.CountLevelCrossings {
		s.levelCross = NewRangeHistogram(s.Config.ClassCount)
	}

	s.state = Rt.Init
	return nil
}

// Feed consumes one batch of raw samples. It may be called
// repeatedly in arbitrary chunkings; the state machine resumes
// exactly where it left off, so results never depend on batching.
func (s *Session) Feed(values []float64) error {
	switch s.state {
	case Rt.Init, Rt.Busy, Rt.BusyInterim:
	case Rt.Error:
		return s.poisoned()
	default:
		return s.fail(fmt.Errorf("feed in state %d: %w", s.state, ErrInvalidArgument))
	}

	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return s.fail(fmt.Errorf("sample %v at position %d is not finite: %w", v, s.pos, ErrInvalidArgument))
		}
		class, err := s.quant.ClassIndex(v)
		if err != nil {
			return s.fail(err)
		}
		tp := Rt.TurningPoint{Value: v, Class: class, Position: s.pos}
		s.pos++

		confirmed, ok := s.filter.Push(tp)
		if ok {
			if err := s.confirm(confirmed); err != nil {
				return err
			}
		}
		if _, interim := s.filter.Interim(); interim {
			s.state = Rt.BusyInterim
		} else {
			s.state = Rt.Busy
		}
	}
	return nil
}

// confirm appends a confirmed turning point to the residue and lets
// the strategy close whatever it can.
func (s *Session) confirm(tp Rt.TurningPoint) error {
	if s.Store != nil {
		if err := s.Store.Append(tp); err != nil {
			return s.fail(fmt.Errorf("turning-point store append: %w", err))
		}
	}
	if err := s.residue.Push(tp); err != nil {
		return s.fail(err)
	}
	s.tpoints++
	if err := s.closer.Advance(s.residue, s.count); err != nil {
		return s.fail(err)
	}
	return nil
}

// count is the EmitFunc shared by all strategies and finalize
// policies: it fans one closed cycle out to every enabled sink.
func (s *Session) count(c Rt.Cycle) error {
	s.cycles += c.Weight
	if s.matrix != nil && c.From != c.To {
		// same-class pairs carry zero range; the diagonal stays zero
		if err := s.matrix.Add(c.From, c.To, c.Weight); err != nil {
			return err
		}
	}
	if s.rangePairs != nil {
		if err := s.rangePairs.Add(absInt(c.From-c.To), c.Weight); err != nil {
			return err
		}
	}
	if s.levelCross != nil {
		lo, hi := c.From, c.To
		if lo > hi {
			lo, hi = hi, lo
		}
		for lv := lo + 1; lv <= hi; lv++ {
			if err := s.levelCross.Add(lv, c.Weight); err != nil {
				return err
			}
		}
	}
	if s.curve != nil {
		d, err := s.cycleDamage(c)
		if err != nil {
			return err
		}
		d *= c.Weight
		s.damage += d
		if s.History != nil {
			if err := s.History.WriteIncrement(c.ToPosition, d); err != nil {
				return fmt.Errorf("damage history write: %w", err)
			}
		}
		if s.Store != nil && d > 0 {
			if err := s.Store.AddStoredDamage(c.FromPosition, d); err != nil {
				return fmt.Errorf("stored damage increment: %w", err)
			}
		}
	}
	return nil
}

// cycleDamage evaluates the Woehler curve for one full cycle of
// this from/to pair. With no amplitude transform in play the result
// depends only on the class distance, so it is memoized per range.
func (s *Session) cycleDamage(c Rt.Cycle) (float64, error) {
	var sa, sm float64
	if s.quant.Enabled() {
		sa = s.Config.ClassWidth * math.Abs(float64(c.From-c.To)) / 2
		sm = (s.quant.Center(c.From) + s.quant.Center(c.To)) / 2
	} else {
		sa = math.Abs(c.FromValue-c.ToValue) / 2
		sm = (c.FromValue + c.ToValue) / 2
	}

	if s.Transform == nil && s.quant.Enabled() {
		key := absInt(c.From - c.To)
		if d, ok := s.damageMemo[key]; ok {
			return d, nil
		}
		d := s.curve.Damage(sa)
		s.damageMemo[key] = d
		return d, nil
	}

	if s.Transform != nil {
		var err error
		sa, err = s.Transform.Transform(sa, sm)
		if err != nil {
			return 0, fmt.Errorf("amplitude transform: %w", err)
		}
	}
	return s.curve.Damage(sa), nil
}

// rangeDamage is the damage of one full cycle spanning a plain
// class range, used by pairing policies that have no from/to cell.
func (s *Session) rangeDamage(classRange float64) float64 {
	if s.curve == nil {
		return 0
	}
	return s.curve.Damage(s.Config.ClassWidth * classRange / 2)
}

// State returns the current lifecycle state.
func (s *Session) State() Rt.CountingState { return s.state }

// LastErr returns the sticky error code, if any.
func (s *Session) LastErr() error { return s.lastErr }

// Damage is the cumulative pseudo-damage counted so far.
func (s *Session) Damage() float64 { return s.damage }

// CycleCount is the number of cycles closed so far, in full-cycle
// units (pairing policies and half cycles count fractionally).
func (s *Session) CycleCount() float64 { return s.cycles }

// TurningPointCount is the number of confirmed turning points.
func (s *Session) TurningPointCount() uint64 { return s.tpoints }

// ResidualDamage is the portion of the total attributable to
// residue handling: total minus the pre-finalize total.
func (s *Session) ResidualDamage() float64 {
	return s.damage - s.damagePreFinal
}

// Matrix returns a copy of the rainflow matrix, or nil when the
// matrix sink is disabled.
func (s *Session) Matrix() *RainflowMatrix {
	if s.matrix == nil {
		return nil
	}
	return s.matrix.Clone()
}

// RangePairs returns a copy of the range-pair histogram, if enabled.
func (s *Session) RangePairs() *RangeHistogram {
	if s.rangePairs == nil {
		return nil
	}
	return s.rangePairs.Clone()
}

// LevelCrossings returns a copy of the level-crossing histogram.
func (s *Session) LevelCrossings() *RangeHistogram {
	if s.levelCross == nil {
		return nil
	}
	return s.levelCross.Clone()
}

// ResiduePoints returns a copy of the unclosed turning points.
// Before finalize this does not include the interim candidate.
func (s *Session) ResiduePoints() []Rt.TurningPoint {
	if s.residue == nil {
		return nil
	}
	return s.residue.Points()
}

// MakeSymmetric folds the matrix onto its upper triangle.
func (s *Session) MakeSymmetric() error {
	if s.state == Rt.Error {
		return s.poisoned()
	}
	if s.matrix == nil {
		return fmt.Errorf("matrix sink disabled: %w", ErrUnsupported)
	}
	s.matrix.MakeSymmetric()
	return nil
}

// Deinit discards all state and returns the session to Init0.
// This is the only way out of a sticky Error.
func (s *Session) Deinit() {
	s.quant = nil
	s.filter = nil
	s.residue = nil
	s.closer = nil
	s.curve = nil
	s.matrix = nil
	s.rangePairs = nil
	s.levelCross = nil
	s.damage = 0
	s.damagePreFinal = 0
	s.damageMemo = nil
	s.cycles = 0
	s.tpoints = 0
	s.pos = 0
	s.finalized = false
	s.lastErr = nil
	s.state = Rt.Init0
}

// fail poisons the session: the state goes to Error and the first
// error code sticks until Deinit.
func (s *Session) fail(err error) error {
	s.state = Rt.Error
	if s.lastErr == nil {
		s.lastErr = err
		slog.Error("Counting session failed", slog.Any("Error", err))
	}
	return err
}

// poisoned is the short-circuit for every call after Error:
// no side effects, same answer every time.
func (s *Session) poisoned() error {
	if s.lastErr != nil {
		return fmt.Errorf("session in error state: %w", s.lastErr)
	}
	return fmt.Errorf("session in error state: %w", ErrUnexpected)
}

func absInt(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
