package plugin

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	Rt "github.com/mkarrer/rainflow/types"
)

// StoredPoint is the persisted form of a turning point: the point
// itself plus the damage bookkeeping attached to it over time.
type StoredPoint struct {
	Point  Rt.TurningPoint
	Damage float64
}

// BadgerStore persists confirmed turning points addressable by
// stream position and archives closed cycles. It implements both
// the session's TurningPointStore collaborator and CycleWriter.
type BadgerStore struct {
	MU        sync.Mutex
	DB        *badger.DB
	BatchSize int
	Buffer    []Rt.TurningPoint
}

func NewBadgerStore(path string, batchSize int) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithCompression(options.ZSTD).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		slog.Error("BadgerStore failed to open database", slog.Any("error", err))
		return nil, fmt.Errorf("database error: %w", err)
	}

	slog.Info("BadgerStore opened",
		slog.String("path", path),
		slog.Int("batchSize", batchSize))

	return &BadgerStore{
		DB:        db,
		BatchSize: batchSize,
		Buffer:    make([]Rt.TurningPoint, 0, batchSize),
	}, nil
}

// Append queues up a batch of turning points,
// when batchsize is reached, it calls Flush()
// which writes the batch out
func (bs *BadgerStore) Append(tp Rt.TurningPoint) error {
	bs.MU.Lock()
	defer bs.MU.Unlock()

	bs.Buffer = append(bs.Buffer, tp)
	if len(bs.Buffer) >= bs.BatchSize {
		return bs.flushLocked() // private Flush that does not lock
	}
	return nil
}

// writePointBatch performs the key/value creation to be stored
// and actually calls BadgerDB to write the data
func (bs *BadgerStore) writePointBatch(tps []Rt.TurningPoint) error {
	wb := bs.DB.NewWriteBatch()
	defer wb.Cancel()

	for _, tp := range tps {
		k := PointKey(tp.Position)
		v := PointEncode(&StoredPoint{Point: tp})
		if err := wb.Set(k, v); err != nil {
			slog.Error("BadgerStore failed to set key in batch",
				slog.Any("error", err),
				slog.Uint64("position", tp.Position))
			return fmt.Errorf("write batch error: %w", err)
		}
	}

	if err := wb.Flush(); err != nil {
		slog.Error("BadgerStore failed to flush batch", slog.Any("error", err))
		return fmt.Errorf("batch flush error: %w", err)
	}

	return nil
}

// Flush is the public method that blocks,
// it writes the buffered points and then clears the buffer
func (bs *BadgerStore) Flush() error {
	bs.MU.Lock()
	defer bs.MU.Unlock()
	return bs.flushLocked()
}

// flushLocked mimics Flush without locking, called by Append
func (bs *BadgerStore) flushLocked() error {
	if len(bs.Buffer) == 0 {
		return nil
	}
	err := bs.writePointBatch(bs.Buffer)
	bs.Buffer = bs.Buffer[:0] // Clear but keep capacity
	return err
}

// GetByPosition retrieves one persisted turning point.
func (bs *BadgerStore) GetByPosition(pos uint64) (Rt.TurningPoint, error) {
	if err := bs.Flush(); err != nil {
		return Rt.TurningPoint{}, err
	}

	var sp *StoredPoint
	err := bs.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(PointKey(pos))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sp, err = PointDecode(val)
			return err
		})
	})
	if err != nil {
		return Rt.TurningPoint{}, fmt.Errorf("point lookup error: %w", err)
	}
	return sp.Point, nil
}

// AddStoredDamage increments the damage bookkeeping attached to a
// persisted turning point, read-modify-write in one transaction.
func (bs *BadgerStore) AddStoredDamage(pos uint64, damage float64) error {
	if err := bs.Flush(); err != nil {
		return err
	}

	return bs.DB.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(PointKey(pos))
		if err != nil {
			return fmt.Errorf("point lookup error: %w", err)
		}
		var sp *StoredPoint
		if err := item.Value(func(val []byte) error {
			sp, err = PointDecode(val)
			return err
		}); err != nil {
			return err
		}
		sp.Damage += damage
		return txn.Set(PointKey(pos), PointEncode(sp))
	})
}

// StoredDamage reads back the accumulated damage for a position.
func (bs *BadgerStore) StoredDamage(pos uint64) (float64, error) {
	if err := bs.Flush(); err != nil {
		return 0, err
	}

	var d float64
	err := bs.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(PointKey(pos))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sp, err := PointDecode(val)
			if err != nil {
				return err
			}
			d = sp.Damage
			return nil
		})
	})
	return d, err
}

// WriteCycle archives a single closed cycle.
func (bs *BadgerStore) WriteCycle(c *Rt.Cycle) error {
	return bs.WriteBatch([]*Rt.Cycle{c})
}

// WriteBatch archives closed cycles keyed by their closing position.
func (bs *BadgerStore) WriteBatch(cs []*Rt.Cycle) error {
	wb := bs.DB.NewWriteBatch()
	defer wb.Cancel()

	for _, c := range cs {
		if err := wb.Set(CycleKey(c), CycleEncode(c)); err != nil {
			slog.Error("BadgerStore failed to set cycle in batch",
				slog.Any("error", err),
				slog.Uint64("position", c.ToPosition))
			return fmt.Errorf("write batch error: %w", err)
		}
	}

	if err := wb.Flush(); err != nil {
		slog.Error("BadgerStore failed to flush cycle batch", slog.Any("error", err))
		return fmt.Errorf("batch flush error: %w", err)
	}
	return nil
}

// QueryRange retrieves archived cycles whose closing position falls
// within [start, end].
func (bs *BadgerStore) QueryRange(start, end uint64) ([]*Rt.Cycle, error) {
	var cycles []*Rt.Cycle

	// db.View() callback
	// BadgerDB provides a transaction in which to get item.Value()
	err := bs.DB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{cyclePrefix}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				c, err := CycleDecode(val)
				if err != nil {
					slog.Error("BadgerStore failed to decode cycle", slog.Any("error", err))
					return fmt.Errorf("cycle decode error: %w", err)
				}

				// Filter by position range
				if c.ToPosition >= start && c.ToPosition <= end {
					cycles = append(cycles, c)
				}
				return nil
			})
			if err != nil {
				slog.Error("BadgerStore callback failure", slog.Any("error", err))
				return fmt.Errorf("item data error: %w", err)
			}
		}
		return nil
	})

	slog.Info("BadgerStore QueryRange successful", slog.Int("count", len(cycles)))

	return cycles, err
}

// Close returns a Flush error but still attempts to close
func (bs *BadgerStore) Close() error {
	slog.Info("BadgerStore closing, flushing buffer",
		slog.Int("bufferSize", len(bs.Buffer)))
	flushErr := bs.Flush()
	closeErr := bs.DB.Close()

	if flushErr != nil {
		slog.Error("BadgerStore failed to flush on close", slog.Any("error", flushErr))
		return fmt.Errorf("flush failed, close may have failed: %v", flushErr)
	}

	if closeErr != nil {
		slog.Error("BadgerStore failed to close database", slog.Any("error", closeErr))
		return fmt.Errorf("close failed: %v", closeErr)
	}

	slog.Info("BadgerStore closed successfully")
	return nil
}

func (bs *BadgerStore) Type() string { return "BadgerDB" }

const (
	pointPrefix = byte('T')
	cyclePrefix = byte('C')
)

// PointKey addresses a turning point by stream position.
// Positive BigEndian integers keep keys sorted chronologically.
func PointKey(pos uint64) []byte {
	key := make([]byte, 1+8)
	key[0] = pointPrefix
	binary.BigEndian.PutUint64(key[1:9], pos)
	return key
}

// CycleKey is a composite key: closing position + opening position,
// so cycles sort by when they closed.
func CycleKey(c *Rt.Cycle) []byte {
	key := make([]byte, 1+8+8)
	key[0] = cyclePrefix
	binary.BigEndian.PutUint64(key[1:9], c.ToPosition)
	binary.BigEndian.PutUint64(key[9:17], c.FromPosition)
	return key
}

// PointEncode serializes the stored point for data storage
func PointEncode(sp *StoredPoint) []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	enc.Encode(sp)
	return buf.Bytes()
}

// PointDecode deserializes the stored point data
func PointDecode(data []byte) (*StoredPoint, error) {
	var sp StoredPoint
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	err := dec.Decode(&sp)
	return &sp, err
}

// CycleEncode serializes the cycle struct for data storage
func CycleEncode(c *Rt.Cycle) []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	enc.Encode(c)
	return buf.Bytes()
}

// CycleDecode deserializes the cycle data
func CycleDecode(data []byte) (*Rt.Cycle, error) {
	var c Rt.Cycle
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	err := dec.Decode(&c)
	return &c, err
}
