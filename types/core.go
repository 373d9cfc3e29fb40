package types

/*

	These are the "immutable" core types of the rainflow counter,
	provided for cross-package use (e.g. Plugins) and testing.

	There are no functions defined here.
	Struct constructors are housed in their own packages.
	Methods taking these types should create local aliases,
	for example: type Cycles []Rt.Cycle

*/

// A TurningPoint is a confirmed local extremum of the load signal.
// While it sits in the residue it is still a cycle candidate;
// once a cycle closes over it, it becomes immutable history.
type TurningPoint struct {
	Value    float64 // raw sample value
	Class    int     // quantized class index (0 in pass-through mode)
	Position uint64  // monotonically increasing stream position
}

// A Cycle is a closed hysteresis loop between two turning points.
// Weight is expressed in full-cycle units: 1.0 for a full cycle,
// 0.5 for a half cycle.
type Cycle struct {
	From         int     // class index of the earlier turning point
	To           int     // class index of the later turning point
	FromValue    float64 // raw value of the earlier turning point
	ToValue      float64 // raw value of the later turning point
	FromPosition uint64
	ToPosition   uint64
	Weight       float64
}

// WoehlerParams holds the S-N curve used for pseudo-damage.
// SX/NX/K is the primary slope point. SD/ND/K2 is the optional
// secondary breakpoint; leave SD at zero to disable it.
// Omission is the amplitude below which cycles contribute nothing.
type WoehlerParams struct {
	SX       float64 // primary amplitude
	NX       float64 // cycles to failure at SX
	K        float64 // primary slope exponent
	SD       float64 // secondary breakpoint amplitude
	ND       float64 // cycles to failure at SD
	K2       float64 // secondary slope exponent
	Omission float64 // omission threshold
}

// Method selects the cycle-closing strategy at construction time.
type Method int

const (
	FourPoint Method = iota // 4-point enclosure on class indices (default)
	HCM                     // Clormann/Seeger 3-point stack on raw values
	ASTM                    // ASTM E1049 3-point with the half-cycle head rule
)

// Policy selects how the residue is disposed of at end-of-stream.
type Policy int

const (
	PolicyIgnore         Policy = iota // promote interim, close once more, leave the rest
	PolicyNoFinalize                   // stop without promoting, session stays resumable
	PolicyDiscard                      // as Ignore, then empty the residue
	PolicyHalfCycles                   // every adjacent residue pair at half weight
	PolicyFullCycles                   // every adjacent residue pair at full weight
	PolicyClormannSeeger               // quad enclosure scan, close matches, discard rest
	PolicyRepeated                     // concatenate the residue to itself and re-feed
	PolicyRPDIN45667                   // range-pair slope matching per DIN 45667
)

// CountingState is the lifecycle of a counting session.
type CountingState int

const (
	Init0       CountingState = iota // constructed, not initialized
	Init                             // initialized, nothing fed yet
	Busy                             // feeding, no interim turning point
	BusyInterim                      // feeding, interim candidate at the tail
	Finalize                         // residue disposal in progress
	Finished                         // finalize completed
	Error                            // sticky until Deinit
)

// TurningPointStore is the persistence collaborator.
// Implementations keep every confirmed turning point addressable
// by its stream position and carry per-point damage bookkeeping.
type TurningPointStore interface {
	Append(tp TurningPoint) error
	GetByPosition(pos uint64) (TurningPoint, error)
	AddStoredDamage(pos uint64, damage float64) error
}

// AmplitudeTransformer is the mean-stress correction collaborator:
// it maps a cycle's amplitude and mean to a corrected amplitude.
type AmplitudeTransformer interface {
	Transform(sa, sm float64) (float64, error)
	Type() string
}

// DamageHistorian receives per-cycle damage increments keyed by
// stream position, for spreading into a time-indexed buffer.
type DamageHistorian interface {
	WriteIncrement(pos uint64, damage float64) error
	Flush() error
}
