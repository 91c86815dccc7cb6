// Package catalog declares every dashboard entity and wires one collection
// controller per entity.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/sma-admin-dashboard/internal/collection"
	"github.com/noah-isme/sma-admin-dashboard/internal/models"
	"github.com/noah-isme/sma-admin-dashboard/internal/schema"
)

// Definition describes one entity: its schema, route name, remote path,
// first-run seed and summary. View, when set, shapes records returned to
// callers with derived read-only fields; stored and remote copies are never
// passed through it.
type Definition[T any] struct {
	Entity    string
	Name      string
	Path      string
	Schema    *schema.Schema
	Seed      []T
	Summarize func([]T) interface{}
	View      func(T) interface{}
}

// MutationResult is a type-erased collection.Result.
type MutationResult struct {
	Record    interface{}
	Sync      models.SyncStatus
	RemoteErr error
}

// Module is the entity-agnostic view of a controller used by handlers and
// background services.
type Module interface {
	Entity() string
	Name() string
	Path() string
	Key() string
	Schema() *schema.Schema
	State() collection.State
	HasRemote() bool
	Load(ctx context.Context) error

	List() (interface{}, int, error)
	Rows() ([]map[string]interface{}, error)
	Get(id int64) (interface{}, error)
	Create(ctx context.Context, fields map[string]interface{}) (MutationResult, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) (MutationResult, error)
	Replace(ctx context.Context, id int64, fields map[string]interface{}) (MutationResult, error)
	Delete(ctx context.Context, id int64) (MutationResult, error)
	Summary() (interface{}, error)
	Validate(fields map[string]interface{}) schema.FieldErrors

	Pending() []collection.PendingEntry
	PendingCount() int
	Resync(ctx context.Context) (collection.ResyncReport, error)
}

type module[T collection.Record[T]] struct {
	def  Definition[T]
	ctrl *collection.Controller[T]
}

func (m *module[T]) Entity() string { return m.def.Entity }
func (m *module[T]) Name() string { return m.def.Name }
func (m *module[T]) Path() string { return m.def.Path }
func (m *module[T]) Key() string { return m.ctrl.Key() }
func (m *module[T]) Schema() *schema.Schema { return m.ctrl.Schema() }
func (m *module[T]) State() collection.State { return m.ctrl.State() }
func (m *module[T]) HasRemote() bool { return m.ctrl.HasRemote() }
func (m *module[T]) Load(ctx context.Context) error { return m.ctrl.Load(ctx) }
func (m *module[T]) Summary() (interface{}, error) { return m.ctrl.Summary() }
func (m *module[T]) Pending() []collection.PendingEntry { return m.ctrl.Pending() }
func (m *module[T]) PendingCount() int { return m.ctrl.PendingCount() }

func (m *module[T]) Validate(fields map[string]interface{}) schema.FieldErrors {
	return m.ctrl.Validate(fields)
}

func (m *module[T]) Resync(ctx context.Context) (collection.ResyncReport, error) {
	return m.ctrl.Resync(ctx)
}

func (m *module[T]) List() (interface{}, int, error) {
	items, err := m.ctrl.List()
	if err != nil {
		return nil, 0, err
	}
	if m.def.View == nil {
		return items, len(items), nil
	}
	views := make([]interface{}, len(items))
	for i, item := range items {
		views[i] = m.def.View(item)
	}
	return views, len(items), nil
}

// Rows returns every record as a field map, for export.
func (m *module[T]) Rows() ([]map[string]interface{}, error) {
	items, err := m.ctrl.List()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s rows: %w", m.def.Name, err)
	}
	rows := make([]map[string]interface{}, 0, len(items))
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", m.def.Name, err)
	}
	return rows, nil
}

func (m *module[T]) Get(id int64) (interface{}, error) {
	record, err := m.ctrl.Get(id)
	if err != nil {
		return nil, err
	}
	return m.view(record), nil
}

func (m *module[T]) Create(ctx context.Context, fields map[string]interface{}) (MutationResult, error) {
	return m.erase(m.ctrl.Create(ctx, fields))
}

func (m *module[T]) Update(ctx context.Context, id int64, fields map[string]interface{}) (MutationResult, error) {
	return m.erase(m.ctrl.Update(ctx, id, fields))
}

// Replace is a full update: optional fields missing from fields are cleared
// or reset to their defaults.
func (m *module[T]) Replace(ctx context.Context, id int64, fields map[string]interface{}) (MutationResult, error) {
	full := make(map[string]interface{}, len(fields))
	for _, f := range m.ctrl.Schema().Fields() {
		if !f.Required {
			full[f.Name] = nil
		}
	}
	for k, v := range fields {
		full[k] = v
	}
	return m.erase(m.ctrl.Update(ctx, id, full))
}

func (m *module[T]) Delete(ctx context.Context, id int64) (MutationResult, error) {
	return m.erase(m.ctrl.Delete(ctx, id))
}

func (m *module[T]) erase(res collection.Result[T], err error) (MutationResult, error) {
	if err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Record: m.view(res.Record), Sync: res.Sync, RemoteErr: res.RemoteErr}, nil
}

func (m *module[T]) view(record T) interface{} {
	if m.def.View == nil {
		return record
	}
	return m.def.View(record)
}
