package plugin

/*

	The Adapter sits aside /counting/
	Contains core interfaces for Plugin

*/

import (
	Rt "github.com/mkarrer/rainflow/types"
)

// CycleWriter can be used to define a place for closed cycles to go,
// cycle-by-cycle or in batches if supported by the output type.
type CycleWriter interface {
	WriteCycle(c *Rt.Cycle) error                         // Write singleton cycle data
	WriteBatch(cs []*Rt.Cycle) error                      // Write batches of cycles
	QueryRange(start, end uint64) ([]*Rt.Cycle, error)    // Stream-position range query tool
	Flush() error                                         // Flush any buffered data
	Close() error                                         // Close the adapter and release resources
	Type() string                                         // ID for output
}
