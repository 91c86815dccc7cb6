package collection

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-admin-dashboard/internal/models"
	"github.com/noah-isme/sma-admin-dashboard/internal/remote"
	appErrors "github.com/noah-isme/sma-admin-dashboard/pkg/errors"
)

// Create validates fields, appends the new record with a local id and mirrors
// it to the remote service. A failed remote call keeps the local record and
// marks it pending.
func (c *Controller[T]) Create(ctx context.Context, raw map[string]any) (Result[T], error) {
	var res Result[T]
	if c.State() != Ready {
		return res, c.notReady()
	}

	c.mutate.Lock()
	defer c.mutate.Unlock()

	fields, errs := c.schema.Coerce(raw)
	if errs != nil {
		return res, c.invalid(errs)
	}
	c.schema.ApplyDefaults(fields, c.clock())
	if errs := c.schema.Validate(fields); errs != nil {
		return res, c.invalid(errs)
	}
	record, err := fromFields[T](fields)
	if err != nil {
		return res, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not build "+c.name+" record")
	}

	c.mu.Lock()
	record = record.WithID(c.nextIDLocked())
	c.items = append(c.items, record)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.persist(ctx, snapshot)

	if c.remote == nil {
		c.observe("create", models.SyncLocal)
		return Result[T]{Record: record, Sync: models.SyncLocal}, nil
	}

	res = c.pushCreate(ctx, record)
	c.observe("create", res.Sync)
	return res, nil
}

// Update shallow-merges partial onto the record with id, validates the merged
// record and mirrors it. A blank optional field is cleared, or reset when it
// declares a default. The remote copy, when returned, replaces the merge.
func (c *Controller[T]) Update(ctx context.Context, id int64, partial map[string]any) (Result[T], error) {
	var res Result[T]
	if c.State() != Ready {
		return res, c.notReady()
	}

	c.mutate.Lock()
	defer c.mutate.Unlock()

	c.mu.RLock()
	i := c.indexLocked(id)
	var current T
	if i >= 0 {
		current = c.items[i]
	}
	c.mu.RUnlock()
	if i < 0 {
		return res, c.notFound(id)
	}

	changes, errs := c.schema.Coerce(partial)
	if errs != nil {
		return res, c.invalid(errs)
	}
	merged, err := toFields(current)
	if err != nil {
		return res, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not read "+c.name+" record")
	}
	for k, v := range changes {
		merged[k] = v
	}
	now := c.clock()
	for k, v := range partial {
		f, ok := c.schema.Field(k)
		if !ok || f.Required || !isBlank(v) {
			continue
		}
		if f.HasDefault() {
			merged[k] = f.DefaultAt(now)
		} else {
			delete(merged, k)
		}
	}
	if errs := c.schema.Validate(merged); errs != nil {
		return res, c.invalid(errs)
	}
	typed, _ := c.schema.Coerce(merged)
	updated, err := fromFields[T](typed)
	if err != nil {
		return res, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not build "+c.name+" record")
	}
	updated = updated.WithID(id)

	c.mu.Lock()
	c.replaceLocked(id, updated)
	snapshot := c.snapshotLocked()
	op := c.pending[id]
	c.mu.Unlock()
	c.persist(ctx, snapshot)

	if c.remote == nil {
		c.observe("update", models.SyncLocal)
		return Result[T]{Record: updated, Sync: models.SyncLocal}, nil
	}

	if op == PendingCreate {
		res = c.pushCreate(ctx, updated)
	} else {
		res = c.pushUpdate(ctx, updated)
	}
	c.observe("update", res.Sync)
	return res, nil
}

// Delete removes the record with id locally and then remotely. A failed
// remote delete is not reverted; it stays pending for the next resync.
func (c *Controller[T]) Delete(ctx context.Context, id int64) (Result[T], error) {
	var res Result[T]
	if c.State() != Ready {
		return res, c.notReady()
	}

	c.mutate.Lock()
	defer c.mutate.Unlock()

	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return res, c.notFound(id)
	}
	removed := c.items[i]
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	snapshot := c.snapshotLocked()
	op, wasPending := c.pending[id]
	if wasPending {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	c.persist(ctx, snapshot)
	if wasPending {
		c.persistPending(ctx)
	}

	if c.remote == nil || op == PendingCreate {
		c.observe("delete", models.SyncLocal)
		return Result[T]{Record: removed, Sync: models.SyncLocal}, nil
	}

	if err := c.callDelete(ctx, id); err != nil {
		c.logger.Warn("remote delete failed", zap.Int64("id", id), zap.Error(err))
		c.notify(LevelWarning, id, "deleted locally, the server could not be updated")
		c.markPending(ctx, id, PendingDelete)
		c.observe("delete", models.SyncPending)
		return Result[T]{Record: removed, Sync: models.SyncPending, RemoteErr: err}, nil
	}
	c.observe("delete", models.SyncSynced)
	return Result[T]{Record: removed, Sync: models.SyncSynced}, nil
}

// pushCreate sends a locally created record and reconciles the server id.
// Callers hold c.mutate.
func (c *Controller[T]) pushCreate(ctx context.Context, record T) Result[T] {
	localID := record.RecordID()
	callCtx, cancel := c.remoteContext(ctx)
	created, err := c.remote.Create(callCtx, record)
	cancel()
	if err != nil {
		c.logger.Warn("remote create failed, keeping local record", zap.Int64("id", localID), zap.Error(err))
		c.notify(LevelWarning, localID, "saved locally, will sync with the server later")
		c.markPending(ctx, localID, PendingCreate)
		return Result[T]{Record: record, Sync: models.SyncPending, RemoteErr: err}
	}

	serverID := created.RecordID()
	if serverID == 0 {
		serverID = localID
	}

	c.mu.Lock()
	if serverID != localID && c.indexLocked(serverID) >= 0 {
		c.mu.Unlock()
		err := errors.New("server assigned an id already in use")
		c.logger.Warn("remote id collides with an existing record", zap.Int64("id", localID), zap.Int64("server_id", serverID))
		c.notify(LevelWarning, localID, "the server returned a conflicting id, kept the local copy")
		c.markPending(ctx, localID, PendingCreate)
		return Result[T]{Record: record, Sync: models.SyncPending, RemoteErr: err}
	}
	final := created.WithID(serverID)
	c.replaceLocked(localID, final)
	if serverID > c.lastID {
		c.lastID = serverID
	}
	_, wasPending := c.pending[localID]
	delete(c.pending, localID)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, snapshot)
	if wasPending {
		c.persistPending(ctx)
	}
	return Result[T]{Record: final, Sync: models.SyncSynced}
}

// pushUpdate sends record and applies the server's copy. Callers hold c.mutate.
func (c *Controller[T]) pushUpdate(ctx context.Context, record T) Result[T] {
	id := record.RecordID()
	callCtx, cancel := c.remoteContext(ctx)
	updated, err := c.remote.Update(callCtx, id, record)
	cancel()
	if err != nil {
		c.logger.Warn("remote update failed, keeping local change", zap.Int64("id", id), zap.Error(err))
		c.notify(LevelWarning, id, "updated locally, will sync with the server later")
		c.markPending(ctx, id, PendingUpdate)
		return Result[T]{Record: record, Sync: models.SyncPending, RemoteErr: err}
	}
	final := updated.WithID(id)

	c.mu.Lock()
	c.replaceLocked(id, final)
	_, wasPending := c.pending[id]
	delete(c.pending, id)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, snapshot)
	if wasPending {
		c.persistPending(ctx)
	}
	return Result[T]{Record: final, Sync: models.SyncSynced}
}

// callDelete treats a 404 as success: the record is already gone remotely.
func (c *Controller[T]) callDelete(ctx context.Context, id int64) error {
	callCtx, cancel := c.remoteContext(ctx)
	defer cancel()
	err := c.remote.Delete(callCtx, id)
	if errors.Is(err, remote.ErrNotFound) {
		return nil
	}
	return err
}

func (c *Controller[T]) replaceLocked(id int64, record T) {
	if i := c.indexLocked(id); i >= 0 {
		c.items[i] = record
	}
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
