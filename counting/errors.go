package rainflow

import "errors"

// Error taxonomy for the counting session.
// Every fallible operation returns one of these (wrapped with context).
// On failure the session records exactly one of them and goes sticky
// until Deinit.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnsupported      = errors.New("unsupported in this configuration")
	ErrMemory           = errors.New("allocation failed")
	ErrDataOutOfRange   = errors.New("data out of range")
	ErrDataInconsistent = errors.New("internal data inconsistent")
	ErrUnexpected       = errors.New("unexpected failure")
)
