package collection

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-admin-dashboard/internal/models"
	"github.com/noah-isme/sma-admin-dashboard/internal/remote"
	"github.com/noah-isme/sma-admin-dashboard/internal/schema"
	"github.com/noah-isme/sma-admin-dashboard/internal/store"
	appErrors "github.com/noah-isme/sma-admin-dashboard/pkg/errors"
)

func feeSchema() *schema.Schema {
	return schema.New("fees",
		schema.String("studentName", "Student name", 2),
		schema.Number("amount", "Amount", 0, 10000000),
		schema.Date("dueDate", "Due date"),
		schema.Enum("status", "Status", models.FeePaid, models.FeePending, models.FeeOverdue).Default(models.FeePending),
		schema.String("description", "Description", 0).Optional(),
	)
}

var fixedNow = time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)

type fakeRemote struct {
	mu        sync.Mutex
	records   map[int64]models.Fee
	order     []int64
	nextID    int64
	failWith  error
	listCalls int
	deletes   []int64
	updateFn  func(models.Fee) models.Fee
}

func newFakeRemote(seed ...models.Fee) *fakeRemote {
	f := &fakeRemote{records: map[int64]models.Fee{}, nextID: 100}
	for _, r := range seed {
		f.records[r.ID] = r
		f.order = append(f.order, r.ID)
	}
	return f
}

func (f *fakeRemote) fail(err error) {
	f.mu.Lock()
	f.failWith = err
	f.mu.Unlock()
}

func (f *fakeRemote) List(context.Context) ([]models.Fee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]models.Fee, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.records[id])
	}
	return out, nil
}

func (f *fakeRemote) Create(_ context.Context, record models.Fee) (models.Fee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return models.Fee{}, f.failWith
	}
	f.nextID++
	record.ID = f.nextID
	f.records[record.ID] = record
	f.order = append(f.order, record.ID)
	return record, nil
}

func (f *fakeRemote) Update(_ context.Context, id int64, record models.Fee) (models.Fee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return models.Fee{}, f.failWith
	}
	if f.updateFn != nil {
		record = f.updateFn(record)
	}
	f.records[id] = record
	return record, nil
}

func (f *fakeRemote) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.deletes = append(f.deletes, id)
	delete(f.records, id)
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func newFeeController(t *testing.T, backend store.Backend, rem Remote[models.Fee], seed ...models.Fee) *Controller[models.Fee] {
	t.Helper()
	opts := Options[models.Fee]{
		Name:    "fees",
		Key:     "dashboard:fees",
		Schema:  feeSchema(),
		Backend: backend,
		Seed:    seed,
		Clock:   func() time.Time { return fixedNow },
		Timeout: time.Second,
		Summarize: func(items []models.Fee) interface{} {
			total := 0.0
			for _, f := range items {
				total += f.Amount
			}
			return map[string]float64{"totalAmount": total}
		},
	}
	if rem != nil {
		opts.Remote = rem
	}
	ctrl, err := New(opts)
	require.NoError(t, err)
	return ctrl
}

func loaded(t *testing.T, ctrl *Controller[models.Fee]) *Controller[models.Fee] {
	t.Helper()
	require.NoError(t, ctrl.Load(context.Background()))
	require.Equal(t, Ready, ctrl.State())
	return ctrl
}

func validFee(name string) map[string]any {
	return map[string]any{"studentName": name, "amount": "150", "dueDate": "2024-09-30"}
}

func TestOperationsBeforeReadyFail(t *testing.T) {
	ctrl := newFeeController(t, store.NewMemoryBackend(), nil)
	assert.Equal(t, Uninitialized, ctrl.State())

	_, err := ctrl.List()
	assert.ErrorIs(t, err, appErrors.ErrNotReady)
	_, err = ctrl.Create(context.Background(), validFee("Jane Doe"))
	assert.ErrorIs(t, err, appErrors.ErrNotReady)
	_, err = ctrl.Summary()
	assert.ErrorIs(t, err, appErrors.ErrNotReady)
}

func TestLoadSeedsOnlyOnce(t *testing.T) {
	backend := store.NewMemoryBackend()
	seed := models.Fee{ID: 1, StudentName: "Seed", Amount: 10, DueDate: "2024-01-01", Status: models.FeePaid}
	ctrl := loaded(t, newFeeController(t, backend, nil, seed))

	list, err := ctrl.List()
	require.NoError(t, err)
	assert.Equal(t, []models.Fee{seed}, list)

	_, err = ctrl.Delete(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, ctrl.Load(context.Background()))

	again := loaded(t, newFeeController(t, backend, nil, seed))
	list, err = again.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateLocalAssignsIncreasingIDs(t *testing.T) {
	backend := store.NewMemoryBackend()
	ctrl := loaded(t, newFeeController(t, backend, nil))
	ctx := context.Background()

	first, err := ctrl.Create(ctx, validFee("Jane Doe"))
	require.NoError(t, err)
	second, err := ctrl.Create(ctx, validFee("John Roe"))
	require.NoError(t, err)

	assert.Equal(t, models.SyncLocal, first.Sync)
	assert.Equal(t, fixedNow.UnixMilli(), first.Record.ID)
	assert.Greater(t, second.Record.ID, first.Record.ID)
	assert.Equal(t, "Jane Doe", first.Record.StudentName)
	assert.Equal(t, 150.0, first.Record.Amount)
	assert.Equal(t, models.FeePending, first.Record.Status)
	assert.Nil(t, first.Record.Description)

	list, err := ctrl.List()
	require.NoError(t, err)
	assert.Equal(t, []models.Fee{first.Record, second.Record}, list)

	stored, state := store.NewRecords[models.Fee](backend, nil, nil).Read(ctx, "dashboard:fees")
	assert.Equal(t, store.Found, state)
	assert.Equal(t, list, stored)
}

func TestCreateRejectsInvalidFee(t *testing.T) {
	ctrl := loaded(t, newFeeController(t, store.NewMemoryBackend(), nil))

	fields := validFee("Jane Doe")
	fields["amount"] = -5
	_, err := ctrl.Create(context.Background(), fields)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "amount")

	list, err := ctrl.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateShallowMerges(t *testing.T) {
	ctrl := loaded(t, newFeeController(t, store.NewMemoryBackend(), nil))
	ctx := context.Background()

	fields := validFee("Jane Doe")
	fields["description"] = "Term fee"
	created, err := ctrl.Create(ctx, fields)
	require.NoError(t, err)

	updated, err := ctrl.Update(ctx, created.Record.ID, map[string]any{"status": models.FeePaid, "id": 999})
	require.NoError(t, err)
	assert.Equal(t, created.Record.ID, updated.Record.ID)
	assert.Equal(t, models.FeePaid, updated.Record.Status)
	assert.Equal(t, "Jane Doe", updated.Record.StudentName)
	assert.Equal(t, "Term fee", models.StringValue(updated.Record.Description))

	cleared, err := ctrl.Update(ctx, created.Record.ID, map[string]any{"description": "", "status": ""})
	require.NoError(t, err)
	assert.Nil(t, cleared.Record.Description)
	assert.Equal(t, models.FeePending, cleared.Record.Status)
	assert.Nil(t, ctrl.Validate(map[string]any{
		"studentName": cleared.Record.StudentName, "amount": cleared.Record.Amount,
		"dueDate": cleared.Record.DueDate, "status": cleared.Record.Status,
	}))

	_, err = ctrl.Update(ctx, created.Record.ID, map[string]any{"amount": "abc"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = ctrl.Update(ctx, 42, map[string]any{"status": models.FeePaid})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	got, err := ctrl.Get(created.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, cleared.Record, got)
}

func TestUpdateKeepsPosition(t *testing.T) {
	ctrl := loaded(t, newFeeController(t, store.NewMemoryBackend(), nil))
	ctx := context.Background()

	a, _ := ctrl.Create(ctx, validFee("Alice"))
	b, _ := ctrl.Create(ctx, validFee("Bob"))
	_, err := ctrl.Update(ctx, a.Record.ID, map[string]any{"amount": 200})
	require.NoError(t, err)

	list, err := ctrl.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.Record.ID, list[0].ID)
	assert.Equal(t, 200.0, list[0].Amount)
	assert.Equal(t, b.Record.ID, list[1].ID)
}

func TestDeleteTwiceReportsNotFound(t *testing.T) {
	ctrl := loaded(t, newFeeController(t, store.NewMemoryBackend(), nil))
	ctx := context.Background()

	created, err := ctrl.Create(ctx, validFee("Jane Doe"))
	require.NoError(t, err)

	_, err = ctrl.Delete(ctx, created.Record.ID)
	require.NoError(t, err)
	_, err = ctrl.Delete(ctx, created.Record.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	list, err := ctrl.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSummaryIsRecomputed(t *testing.T) {
	ctrl := loaded(t, newFeeController(t, store.NewMemoryBackend(), nil))
	ctx := context.Background()

	_, err := ctrl.Create(ctx, validFee("Jane Doe"))
	require.NoError(t, err)
	first, err := ctrl.Summary()
	require.NoError(t, err)
	second, err := ctrl.Summary()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = ctrl.Create(ctx, validFee("John Roe"))
	require.NoError(t, err)
	third, err := ctrl.Summary()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"totalAmount": 300}, third)
}

func TestLoadReplacesWithRemoteList(t *testing.T) {
	backend := store.NewMemoryBackend()
	local := store.NewRecords[models.Fee](backend, nil, nil)
	require.NoError(t, local.Write(context.Background(), "dashboard:fees", []models.Fee{{ID: 5, StudentName: "Stale"}}))

	rem := newFakeRemote(models.Fee{ID: 1, StudentName: "Remote", Amount: 10, DueDate: "2024-01-01", Status: models.FeePaid})
	ctrl := loaded(t, newFeeController(t, backend, rem))

	list, err := ctrl.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Remote", list[0].StudentName)
}

func TestLoadKeepsLocalCopyWhenRemoteFails(t *testing.T) {
	backend := store.NewMemoryBackend()
	local := store.NewRecords[models.Fee](backend, nil, nil)
	require.NoError(t, local.Write(context.Background(), "dashboard:fees", []models.Fee{{ID: 5, StudentName: "Saved"}}))

	rem := newFakeRemote()
	rem.fail(remote.ErrUnavailable)
	notifier := &recordingNotifier{}
	ctrl := newFeeController(t, backend, rem)
	ctrl.notifier = notifier
	loaded(t, ctrl)

	list, err := ctrl.List()
	require.NoError(t, err)
	assert.Equal(t, []models.Fee{{ID: 5, StudentName: "Saved"}}, list)
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, LevelWarning, notifier.notices[0].Level)
}

func TestCreateReconcilesServerID(t *testing.T) {
	rem := newFakeRemote()
	ctrl := loaded(t, newFeeController(t, store.NewMemoryBackend(), rem))

	res, err := ctrl.Create(context.Background(), validFee("Jane Doe"))
	require.NoError(t, err)
	assert.Equal(t, models.SyncSynced, res.Sync)
	assert.Equal(t, int64(101), res.Record.ID)

	list, err := ctrl.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(101), list[0].ID)
	assert.Empty(t, ctrl.Pending())
}

func TestCreateFallsBackToPendingAndResyncs(t *testing.T) {
	backend := store.NewMemoryBackend()
	rem := newFakeRemote()
	ctrl := loaded(t, newFeeController(t, backend, rem))
	ctx := context.Background()

	rem.fail(remote.ErrUnavailable)
	res, err := ctrl.Create(ctx, validFee("Jane Doe"))
	require.NoError(t, err)
	assert.Equal(t, models.SyncPending, res.Sync)
	assert.ErrorIs(t, res.RemoteErr, remote.ErrUnavailable)
	localID := res.Record.ID
	assert.Equal(t, []PendingEntry{{ID: localID, Op: PendingCreate}}, ctrl.Pending())

	markers, state := store.NewRecords[PendingEntry](backend, nil, nil).Read(ctx, "dashboard:fees:pending")
	assert.Equal(t, store.Found, state)
	assert.Equal(t, []PendingEntry{{ID: localID, Op: PendingCreate}}, markers)

	list, err := ctrl.List()
	require.NoError(t, err)
	require.Len(t, list, 1)

	rem.fail(nil)
	report, err := ctrl.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResyncReport{Entity: "fees", Attempted: 1, Synced: 1, Remaining: 0}, report)

	list, err = ctrl.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(101), list[0].ID)
	assert.Empty(t, ctrl.Pending())
}

func TestPendingCreateSurvivesRemoteLoad(t *testing.T) {
	backend := store.NewMemoryBackend()
	rem := newFakeRemote(models.Fee{ID: 1, StudentName: "Remote", Amount: 1, DueDate: "2024-01-01", Status: models.FeePaid})
	ctrl := loaded(t, newFeeController(t, backend, rem))

	rem.fail(remote.ErrUnavailable)
	res, err := ctrl.Create(context.Background(), validFee("Offline"))
	require.NoError(t, err)
	rem.fail(nil)

	reloaded := loaded(t, newFeeController(t, backend, rem))
	list, err := reloaded.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, res.Record.ID, list[1].ID)
	assert.Equal(t, []PendingEntry{{ID: res.Record.ID, Op: PendingCreate}}, reloaded.Pending())
}

func TestUpdateTakesRemoteCopy(t *testing.T) {
	rem := newFakeRemote()
	rem.updateFn = func(f models.Fee) models.Fee {
		f.StudentName = "Server Name"
		return f
	}
	ctrl := loaded(t, newFeeController(t, store.NewMemoryBackend(), rem))
	ctx := context.Background()

	created, err := ctrl.Create(ctx, validFee("Jane Doe"))
	require.NoError(t, err)
	res, err := ctrl.Update(ctx, created.Record.ID, map[string]any{"status": models.FeeOverdue})
	require.NoError(t, err)
	assert.Equal(t, models.SyncSynced, res.Sync)
	assert.Equal(t, "Server Name", res.Record.StudentName)
	assert.Equal(t, models.FeeOverdue, res.Record.Status)

	got, err := ctrl.Get(created.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Server Name", got.StudentName)
}

func TestUpdateOfPendingCreatePushesCreate(t *testing.T) {
	rem := newFakeRemote()
	ctrl := loaded(t, newFeeController(t, store.NewMemoryBackend(), rem))
	ctx := context.Background()

	rem.fail(remote.ErrTimeout)
	created, err := ctrl.Create(ctx, validFee("Jane Doe"))
	require.NoError(t, err)
	res, err := ctrl.Update(ctx, created.Record.ID, map[string]any{"amount": 99})
	require.NoError(t, err)
	assert.Equal(t, []PendingEntry{{ID: created.Record.ID, Op: PendingCreate}}, ctrl.Pending())
	assert.ErrorIs(t, res.RemoteErr, remote.ErrTimeout)

	rem.fail(nil)
	res, err = ctrl.Update(ctx, created.Record.ID, map[string]any{"amount": 120})
	require.NoError(t, err)
	assert.Equal(t, models.SyncSynced, res.Sync)
	assert.Equal(t, int64(101), res.Record.ID)
	assert.Equal(t, 120.0, res.Record.Amount)
	assert.Empty(t, ctrl.Pending())
}

func TestDeleteIsNotRevertedOnRemoteFailure(t *testing.T) {
	rem := newFakeRemote()
	ctrl := loaded(t, newFeeController(t, store.NewMemoryBackend(), rem))
	ctx := context.Background()

	created, err := ctrl.Create(ctx, validFee("Jane Doe"))
	require.NoError(t, err)

	rem.fail(remote.ErrUnavailable)
	res, err := ctrl.Delete(ctx, created.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncPending, res.Sync)
	_, err = ctrl.Get(created.Record.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, []PendingEntry{{ID: created.Record.ID, Op: PendingDelete}}, ctrl.Pending())

	rem.fail(nil)
	report, err := ctrl.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, []int64{created.Record.ID}, rem.deletes)
}

func TestDeletePendingCreateSkipsRemote(t *testing.T) {
	rem := newFakeRemote()
	ctrl := loaded(t, newFeeController(t, store.NewMemoryBackend(), rem))
	ctx := context.Background()

	rem.fail(remote.ErrUnavailable)
	created, err := ctrl.Create(ctx, validFee("Jane Doe"))
	require.NoError(t, err)
	rem.fail(nil)

	res, err := ctrl.Delete(ctx, created.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncLocal, res.Sync)
	assert.Empty(t, rem.deletes)
	assert.Empty(t, ctrl.Pending())
}

func TestRemoteTimeoutIsDistinct(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := remote.NewClient[models.Fee](remote.Config{BaseURL: server.URL, Path: "/fees"})
	ctrl := newFeeController(t, store.NewMemoryBackend(), client)
	ctrl.timeout = 50 * time.Millisecond
	loaded(t, ctrl)

	res, err := ctrl.Create(context.Background(), validFee("Jane Doe"))
	require.NoError(t, err)
	assert.Equal(t, models.SyncPending, res.Sync)
	assert.ErrorIs(t, res.RemoteErr, remote.ErrTimeout)
	assert.NotErrorIs(t, res.RemoteErr, remote.ErrUnavailable)
}

func TestConcurrentCreatesGetUniqueIDs(t *testing.T) {
	rem := newFakeRemote()
	ctrl := loaded(t, newFeeController(t, store.NewMemoryBackend(), rem))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ctrl.Create(context.Background(), validFee("Student"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := ctrl.List()
	require.NoError(t, err)
	require.Len(t, list, 20)
	seen := map[int64]bool{}
	for _, f := range list {
		assert.False(t, seen[f.ID], "duplicate id %d", f.ID)
		seen[f.ID] = true
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	ctrl := loaded(t, newFeeController(t, store.NewMemoryBackend(), nil))

	assert.Nil(t, ctrl.Validate(validFee("Jane Doe")))
	errs := ctrl.Validate(map[string]any{"amount": -1})
	assert.Contains(t, errs, "amount")
	assert.Contains(t, errs, "studentName")

	list, err := ctrl.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}
