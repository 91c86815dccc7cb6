// Package store persists whole entity collections as JSON arrays keyed by a
// fixed per-entity key. Writes overwrite; there is no merge.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Backend is a byte-level key/value store shared by every collection.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte) error
	Name() string
}

// Observer receives store operation timings.
type Observer interface {
	ObserveStoreOperation(backend, op string, d time.Duration, err error)
}

// ReadState tells the caller how a read was satisfied.
type ReadState int

const (
	Found ReadState = iota
	Absent
	Corrupt
	Unavailable
)

func (s ReadState) String() string {
	switch s {
	case Found:
		return "found"
	case Absent:
		return "absent"
	case Corrupt:
		return "corrupt"
	case Unavailable:
		return "unavailable"
	}
	return "unknown"
}

// Records is the typed collection layer over a Backend.
type Records[T any] struct {
	backend  Backend
	logger   *zap.Logger
	observer Observer
}

// NewRecords wraps backend for records of type T.
func NewRecords[T any](backend Backend, logger *zap.Logger, observer Observer) *Records[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Records[T]{backend: backend, logger: logger, observer: observer}
}

// Read returns the stored collection. It never fails: a missing key, a parse
// failure or a backend error all yield an empty collection, distinguished by
// the returned state.
func (r *Records[T]) Read(ctx context.Context, key string) ([]T, ReadState) {
	start := time.Now()
	payload, ok, err := r.backend.Get(ctx, key)
	r.observe("read", start, err)
	if err != nil {
		r.logger.Warn("store read failed", zap.String("key", key), zap.String("backend", r.backend.Name()), zap.Error(err))
		return []T{}, Unavailable
	}
	if !ok || len(payload) == 0 {
		return []T{}, Absent
	}
	var out []T
	if err := json.Unmarshal(payload, &out); err != nil {
		r.logger.Error("stored collection is corrupt", zap.String("key", key), zap.String("backend", r.backend.Name()), zap.Error(err))
		return []T{}, Corrupt
	}
	if out == nil {
		out = []T{}
	}
	return out, Found
}

// Write replaces the stored collection for key.
func (r *Records[T]) Write(ctx context.Context, key string, records []T) error {
	if records == nil {
		records = []T{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	start := time.Now()
	err = r.backend.Put(ctx, key, payload)
	r.observe("write", start, err)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Bootstrap reads key and, when nothing usable is stored, writes and returns
// seed. Existing data is never overwritten, and an unavailable backend is not
// seeded.
func (r *Records[T]) Bootstrap(ctx context.Context, key string, seed []T) ([]T, ReadState) {
	records, state := r.Read(ctx, key)
	if len(seed) == 0 || (state != Absent && state != Corrupt) {
		return records, state
	}
	seeded := make([]T, len(seed))
	copy(seeded, seed)
	if err := r.Write(ctx, key, seeded); err != nil {
		r.logger.Warn("seed write failed", zap.String("key", key), zap.Error(err))
	} else {
		r.logger.Info("collection seeded", zap.String("key", key), zap.Int("records", len(seeded)))
	}
	return seeded, state
}

func (r *Records[T]) observe(op string, start time.Time, err error) {
	if r.observer == nil {
		return
	}
	r.observer.ObserveStoreOperation(r.backend.Name(), op, time.Since(start), err)
}
