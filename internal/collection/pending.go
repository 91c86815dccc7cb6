package collection

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// PendingOp is the remote call still owed for a record.
type PendingOp string

const (
	PendingCreate PendingOp = "create"
	PendingUpdate PendingOp = "update"
	PendingDelete PendingOp = "delete"
)

// PendingEntry is the persisted pending-sync marker.
type PendingEntry struct {
	ID int64     `json:"id"`
	Op PendingOp `json:"op"`
}

// ResyncReport summarizes one Resync pass.
type ResyncReport struct {
	Entity    string `json:"entity"`
	Attempted int    `json:"attempted"`
	Synced    int    `json:"synced"`
	Failed    int    `json:"failed"`
	Remaining int    `json:"remaining"`
}

func pendingKey(key string) string { return key + ":pending" }

// Pending lists outstanding markers ordered by id.
func (c *Controller[T]) Pending() []PendingEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pendingLocked()
}

// PendingCount returns the number of outstanding markers.
func (c *Controller[T]) PendingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pending)
}

// Resync retries the remote call for every pending record. Successes clear
// their marker; failures keep it.
func (c *Controller[T]) Resync(ctx context.Context) (ResyncReport, error) {
	report := ResyncReport{Entity: c.name}
	if c.State() != Ready {
		return report, c.notReady()
	}
	if c.remote == nil {
		return report, nil
	}

	c.mutate.Lock()
	defer c.mutate.Unlock()

	for _, entry := range c.Pending() {
		if ctx.Err() != nil {
			break
		}
		report.Attempted++
		if c.resyncOne(ctx, entry) {
			report.Synced++
		} else {
			report.Failed++
		}
	}
	report.Remaining = c.PendingCount()
	if report.Attempted > 0 {
		c.logger.Info("resync finished", zap.Int("attempted", report.Attempted), zap.Int("synced", report.Synced), zap.Int("remaining", report.Remaining))
	}
	return report, nil
}

func (c *Controller[T]) resyncOne(ctx context.Context, entry PendingEntry) bool {
	if entry.Op == PendingDelete {
		if err := c.callDelete(ctx, entry.ID); err != nil {
			c.logger.Warn("resync delete failed", zap.Int64("id", entry.ID), zap.Error(err))
			return false
		}
		c.clearPending(ctx, entry.ID)
		return true
	}

	c.mu.RLock()
	i := c.indexLocked(entry.ID)
	var record T
	if i >= 0 {
		record = c.items[i]
	}
	c.mu.RUnlock()
	if i < 0 {
		c.clearPending(ctx, entry.ID)
		return true
	}

	var res Result[T]
	if entry.Op == PendingCreate {
		res = c.pushCreate(ctx, record)
	} else {
		res = c.pushUpdate(ctx, record)
	}
	return res.RemoteErr == nil
}

func (c *Controller[T]) markPending(ctx context.Context, id int64, op PendingOp) {
	c.mu.Lock()
	if existing, ok := c.pending[id]; ok && existing == PendingCreate && op == PendingUpdate {
		op = PendingCreate
	}
	c.pending[id] = op
	c.mu.Unlock()
	c.persistPending(ctx)
}

func (c *Controller[T]) clearPending(ctx context.Context, id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
	c.persistPending(ctx)
}

func (c *Controller[T]) persistPending(ctx context.Context) {
	c.mu.RLock()
	entries := c.pendingLocked()
	c.mu.RUnlock()
	if err := c.pendingRecs.Write(ctx, pendingKey(c.key), entries); err != nil {
		c.logger.Error("persist pending markers failed", zap.Error(err))
	}
	c.reportPending()
}

func (c *Controller[T]) reportPending() {
	if c.metrics != nil {
		c.metrics.SetPending(c.name, c.PendingCount())
	}
}

func (c *Controller[T]) pendingLocked() []PendingEntry {
	out := make([]PendingEntry, 0, len(c.pending))
	for id, op := range c.pending {
		out = append(out, PendingEntry{ID: id, Op: op})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
