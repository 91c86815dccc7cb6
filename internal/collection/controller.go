// Package collection implements the per-entity collection controller: the
// in-memory source of truth for one entity, mirrored to the persisted store
// and, when configured, to the remote record service.
package collection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-admin-dashboard/internal/models"
	"github.com/noah-isme/sma-admin-dashboard/internal/schema"
	"github.com/noah-isme/sma-admin-dashboard/internal/store"
	appErrors "github.com/noah-isme/sma-admin-dashboard/pkg/errors"
)

// Record is implemented by every entity struct.
type Record[T any] interface {
	RecordID() int64
	WithID(id int64) T
}

// Remote is the subset of the remote client the controller depends on.
type Remote[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, id int64, record T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// State is the controller lifecycle.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	}
	return "uninitialized"
}

// Notice is a transient user-facing message raised by a controller.
type Notice struct {
	Entity   string
	Level    string
	Message  string
	RecordID int64
}

const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notifier receives notices. Implementations must not block.
type Notifier interface {
	Notify(n Notice)
}

// Metrics receives mutation outcomes and the pending backlog size.
type Metrics interface {
	ObserveMutation(entity, op string, status models.SyncStatus)
	SetPending(entity string, n int)
	SetSize(entity string, n int)
}

// Options configures one controller.
type Options[T any] struct {
	Name      string
	Key       string
	Schema    *schema.Schema
	Backend   store.Backend
	Seed      []T
	Summarize func([]T) interface{}
	Remote    Remote[T]
	Timeout   time.Duration
	Clock     func() time.Time
	Logger    *zap.Logger
	Notifier  Notifier
	Metrics   Metrics
	Observer  store.Observer
}

// Result reports the outcome of a mutation. RemoteErr is set when the
// mutation was applied locally but the remote call failed.
type Result[T any] struct {
	Record    T
	Sync      models.SyncStatus
	RemoteErr error
}

// Controller owns one entity collection.
type Controller[T Record[T]] struct {
	name      string
	key       string
	schema    *schema.Schema
	seed      []T
	summarize func([]T) interface{}
	remote    Remote[T]
	timeout   time.Duration
	clock     func() time.Time
	logger    *zap.Logger
	notifier  Notifier
	metrics   Metrics

	records     *store.Records[T]
	pendingRecs *store.Records[PendingEntry]

	// mutate serializes mutations, including their remote round trip.
	mutate sync.Mutex

	mu      sync.RWMutex
	state   State
	items   []T
	pending map[int64]PendingOp
	lastID  int64
}

// New builds a controller in the Uninitialized state.
func New[T Record[T]](opts Options[T]) (*Controller[T], error) {
	if opts.Name == "" || opts.Key == "" {
		return nil, fmt.Errorf("collection: name and key are required")
	}
	if opts.Schema == nil {
		return nil, fmt.Errorf("collection %s: schema is required", opts.Name)
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("collection %s: backend is required", opts.Name)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("collection", opts.Name))
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Controller[T]{
		name:        opts.Name,
		key:         opts.Key,
		schema:      opts.Schema,
		seed:        opts.Seed,
		summarize:   opts.Summarize,
		remote:      opts.Remote,
		timeout:     opts.Timeout,
		clock:       clock,
		logger:      logger,
		notifier:    opts.Notifier,
		metrics:     opts.Metrics,
		records:     store.NewRecords[T](opts.Backend, logger, opts.Observer),
		pendingRecs: store.NewRecords[PendingEntry](opts.Backend, logger, opts.Observer),
		items:       []T{},
		pending:     map[int64]PendingOp{},
	}, nil
}

func (c *Controller[T]) Name() string { return c.name }

func (c *Controller[T]) Key() string { return c.key }

func (c *Controller[T]) Schema() *schema.Schema { return c.schema }

// HasRemote reports whether mutations are mirrored to the remote service.
func (c *Controller[T]) HasRemote() bool { return c.remote != nil }

// State returns the current lifecycle state.
func (c *Controller[T]) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Load performs the initial read. Only the first call does any work; the
// controller is Ready afterwards even if every source failed.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Uninitialized {
		c.mu.Unlock()
		return nil
	}
	c.state = Loading
	c.mu.Unlock()

	c.mutate.Lock()
	defer c.mutate.Unlock()

	items, readState := c.records.Bootstrap(ctx, c.key, c.seed)
	if readState == store.Corrupt {
		c.notify(LevelWarning, 0, "stored "+c.name+" could not be read and were reset")
	}
	items = dedupe(items, c.logger)

	pending := map[int64]PendingOp{}
	entries, _ := c.pendingRecs.Read(ctx, pendingKey(c.key))
	for _, e := range entries {
		pending[e.ID] = e.Op
	}

	if c.remote != nil {
		callCtx, cancel := c.remoteContext(ctx)
		remoteItems, err := c.remote.List(callCtx)
		cancel()
		if err != nil {
			c.logger.Warn("remote list failed, using local copy", zap.Error(err))
			c.notify(LevelWarning, 0, "could not reach the server, showing saved "+c.name)
		} else {
			items = mergeRemote(dedupe(remoteItems, c.logger), items, pending)
			if err := c.records.Write(ctx, c.key, items); err != nil {
				c.logger.Warn("persist remote list failed", zap.Error(err))
			}
		}
	}

	c.mu.Lock()
	c.items = items
	c.pending = pending
	for _, item := range items {
		if item.RecordID() > c.lastID {
			c.lastID = item.RecordID()
		}
	}
	c.state = Ready
	c.mu.Unlock()

	c.reportPending()
	c.reportSize(len(items))
	c.logger.Info("collection ready", zap.Int("records", len(items)), zap.String("source", readState.String()), zap.Int("pending", len(pending)))
	return nil
}

// List returns a copy of the collection in append order.
func (c *Controller[T]) List() ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != Ready {
		return nil, c.notReady()
	}
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out, nil
}

// Get returns the record with id.
func (c *Controller[T]) Get(id int64) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	if c.state != Ready {
		return zero, c.notReady()
	}
	i := c.indexLocked(id)
	if i < 0 {
		return zero, c.notFound(id)
	}
	return c.items[i], nil
}

// Summary recomputes the aggregate view from the current collection.
func (c *Controller[T]) Summary() (interface{}, error) {
	items, err := c.List()
	if err != nil {
		return nil, err
	}
	if c.summarize == nil {
		return map[string]int{"total": len(items)}, nil
	}
	return c.summarize(items), nil
}

// Validate checks fields as a create payload without changing anything.
func (c *Controller[T]) Validate(fields map[string]any) schema.FieldErrors {
	typed, errs := c.schema.Coerce(fields)
	if errs != nil {
		return errs
	}
	c.schema.ApplyDefaults(typed, c.clock())
	return c.schema.Validate(typed)
}

func (c *Controller[T]) indexLocked(id int64) int {
	for i, item := range c.items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}

func (c *Controller[T]) snapshotLocked() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// nextIDLocked returns a time-derived id strictly greater than any id issued
// or loaded so far.
func (c *Controller[T]) nextIDLocked() int64 {
	id := c.clock().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	for c.indexLocked(id) >= 0 {
		id++
	}
	c.lastID = id
	return id
}

func (c *Controller[T]) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Controller[T]) persist(ctx context.Context, items []T) {
	c.reportSize(len(items))
	if err := c.records.Write(ctx, c.key, items); err != nil {
		c.logger.Error("persist collection failed", zap.Error(err))
		c.notify(LevelError, 0, "changes to "+c.name+" could not be saved")
	}
}

func (c *Controller[T]) notify(level string, id int64, message string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(Notice{Entity: c.name, Level: level, Message: message, RecordID: id})
}

func (c *Controller[T]) observe(op string, status models.SyncStatus) {
	if c.metrics != nil {
		c.metrics.ObserveMutation(c.name, op, status)
	}
}

func (c *Controller[T]) reportSize(n int) {
	if c.metrics != nil {
		c.metrics.SetSize(c.name, n)
	}
}

func (c *Controller[T]) notReady() error {
	return appErrors.Clone(appErrors.ErrNotReady, c.name+" is still loading")
}

func (c *Controller[T]) notFound(id int64) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s record %d not found", c.name, id))
}

func (c *Controller[T]) invalid(errs schema.FieldErrors) error {
	return appErrors.WithDetails(appErrors.ErrValidation, "invalid "+c.name+": "+errs.Error(), errs)
}

func dedupe[T Record[T]](items []T, logger *zap.Logger) []T {
	seen := make(map[int64]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.RecordID()]; dup {
			logger.Warn("dropping duplicate record id", zap.Int64("id", item.RecordID()))
			continue
		}
		seen[item.RecordID()] = struct{}{}
		out = append(out, item)
	}
	return out
}

// mergeRemote takes the remote list as authoritative except for records with
// an outstanding local change.
func mergeRemote[T Record[T]](remoteItems, local []T, pending map[int64]PendingOp) []T {
	localByID := make(map[int64]T, len(local))
	for _, item := range local {
		localByID[item.RecordID()] = item
	}
	out := make([]T, 0, len(remoteItems))
	seen := make(map[int64]struct{}, len(remoteItems))
	for _, item := range remoteItems {
		id := item.RecordID()
		switch pending[id] {
		case PendingDelete:
			continue
		case PendingUpdate:
			if l, ok := localByID[id]; ok {
				item = l
			}
		}
		seen[id] = struct{}{}
		out = append(out, item)
	}
	for _, item := range local {
		id := item.RecordID()
		if _, ok := seen[id]; ok {
			continue
		}
		if op := pending[id]; op == PendingCreate || op == PendingUpdate {
			out = append(out, item)
		}
	}
	return out
}
