package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-admin-dashboard/internal/collection"
	"github.com/noah-isme/sma-admin-dashboard/internal/models"
	"github.com/noah-isme/sma-admin-dashboard/internal/store"
	"github.com/noah-isme/sma-admin-dashboard/pkg/config"
	appErrors "github.com/noah-isme/sma-admin-dashboard/pkg/errors"
)

func testDeps() Deps {
	return Deps{
		KeyPrefix: "test",
		Backend:   store.NewMemoryBackend(),
		Clock:     func() time.Time { return time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func loadedModule[T collection.Record[T]](t *testing.T, def Definition[T]) Module {
	t.Helper()
	r := NewRegistry(testDeps())
	require.NoError(t, Register(r, def))
	require.NoError(t, r.LoadAll(context.Background()))
	m, ok := r.Module(def.Name)
	require.True(t, ok)
	return m
}

func TestAttendanceSummaryCountsStatuses(t *testing.T) {
	def := AttendanceDefinition()
	def.Seed = nil
	m := loadedModule(t, def)
	ctx := context.Background()

	for _, rec := range []map[string]interface{}{
		{"studentName": "A", "status": "Present"},
		{"studentName": "B", "status": "Absent"},
		{"studentName": "C", "status": "Present"},
	} {
		rec["studentName"] = rec["studentName"].(string) + " Student"
		_, err := m.Create(ctx, rec)
		require.NoError(t, err)
	}

	summary, err := m.Summary()
	require.NoError(t, err)
	got := summary.(models.AttendanceSummary)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.ByStatus["Present"])
	assert.Equal(t, 1, got.ByStatus["Absent"])
	assert.Equal(t, 66.67, got.Rate)
}

func TestAttendanceSummaryOfSeed(t *testing.T) {
	summary := summarizeAttendance([]models.Attendance{
		{StudentName: "A", Status: "Present"},
		{StudentName: "B", Status: "Absent"},
		{StudentName: "C", Status: "Present"},
	}).(models.AttendanceSummary)
	assert.Equal(t, models.CountBy{"Present": 2, "Absent": 1}, summary.ByStatus)
}

func TestResultPercentage(t *testing.T) {
	m := loadedModule(t, ResultDefinition())
	res, err := m.Create(context.Background(), map[string]interface{}{
		"studentName": "Jane Doe", "subject": "Math", "score": "45", "totalMarks": 100,
	})
	require.NoError(t, err)
	record := res.Record.(models.ResultView)
	assert.Equal(t, 45.00, record.Percentage)
	assert.Equal(t, 45.0, record.Score)

	got, err := m.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, 45.00, got.(models.ResultView).Percentage)

	summary, err := m.Summary()
	require.NoError(t, err)
	sum := summary.(models.ResultSummary)
	assert.Equal(t, 45.00, sum.AveragePercentage)
	assert.Equal(t, 1, sum.Passed)
	assert.Equal(t, 45.00, sum.HighestPercentage)
}

func TestUpdateBlankResetsDefaultedFields(t *testing.T) {
	m := loadedModule(t, TeacherDefinition())
	ctx := context.Background()
	created, err := m.Create(ctx, map[string]interface{}{
		"name": "Mr. Lee", "email": "lee@school.local", "subject": "Math", "phone": "5550101",
		"status": "On Leave", "joinDate": "2023-01-10",
	})
	require.NoError(t, err)
	id := created.Record.(models.Teacher).ID

	updated, err := m.Update(ctx, id, map[string]interface{}{"status": "", "joinDate": "", "phone": nil})
	require.NoError(t, err)
	teacher := updated.Record.(models.Teacher)
	assert.Equal(t, "Active", teacher.Status)
	assert.Equal(t, "2024-09-01", teacher.JoinDate)
	assert.Nil(t, teacher.Phone)

	summary, err := m.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.(models.TeacherSummary).ByStatus["Active"])
}

func TestReplaceDefaultsUseRegistryClock(t *testing.T) {
	m := loadedModule(t, AnnouncementDefinition())
	ctx := context.Background()
	created, err := m.Create(ctx, map[string]interface{}{
		"title": "Sports day", "content": "Bring your running shoes", "author": "Office", "date": "2024-01-15",
	})
	require.NoError(t, err)
	id := created.Record.(models.Announcement).ID

	replaced, err := m.Replace(ctx, id, map[string]interface{}{
		"title": "Sports day", "content": "Bring your running shoes", "author": "Office",
	})
	require.NoError(t, err)
	a := replaced.Record.(models.Announcement)
	assert.Equal(t, "2024-09-01", a.Date)
	assert.Equal(t, "Medium", a.Priority)
}

func TestStudentCreateAssignsID(t *testing.T) {
	m := loadedModule(t, StudentDefinition())
	res, err := m.Create(context.Background(), map[string]interface{}{
		"name": "Jane Doe", "email": "jane@x.com", "grade": "A",
	})
	require.NoError(t, err)
	student := res.Record.(models.Student)
	assert.NotZero(t, student.ID)
	assert.Equal(t, "Jane Doe", student.Name)
	assert.Equal(t, "jane@x.com", student.Email)
	assert.Equal(t, "A", student.Grade)
	assert.Equal(t, "2024-09-01", student.JoinDate)
	assert.Equal(t, models.SyncLocal, res.Sync)

	list, count, err := m.List()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []models.Student{student}, list)
}

func TestFeeNegativeAmountRejected(t *testing.T) {
	m := loadedModule(t, FeeDefinition())
	_, err := m.Create(context.Background(), map[string]interface{}{
		"studentName": "Jane Doe", "amount": -5, "dueDate": "2024-09-30",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "Amount must be at least 0", appErr.Details["amount"])

	_, count, err := m.List()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReplaceClearsOptionalFields(t *testing.T) {
	m := loadedModule(t, CourseDefinition())
	ctx := context.Background()
	created, err := m.Create(ctx, map[string]interface{}{
		"title": "Algebra", "code": "MTH1", "teacher": "Mr. Lee", "credits": 3, "status": "Upcoming", "description": "Intro",
	})
	require.NoError(t, err)
	id := created.Record.(models.Course).ID

	replaced, err := m.Replace(ctx, id, map[string]interface{}{
		"title": "Algebra I", "code": "MTH1", "teacher": "Mr. Lee", "credits": 4,
	})
	require.NoError(t, err)
	course := replaced.Record.(models.Course)
	assert.Equal(t, "Algebra I", course.Title)
	assert.Equal(t, 4, course.Credits)
	assert.Equal(t, "Active", course.Status)
	assert.Nil(t, course.Description)
}

func TestRowsExposeFieldMaps(t *testing.T) {
	m := loadedModule(t, ProductDefinition())
	_, err := m.Create(context.Background(), map[string]interface{}{
		"name": "Notebook", "category": "Stationery", "price": "2.5", "stock": "40",
	})
	require.NoError(t, err)

	rows, err := m.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Notebook", rows[0]["name"])
	assert.Equal(t, 40.0, rows[0]["stock"])
	assert.Equal(t, "Active", rows[0]["status"])
}

func TestRegisterRejectsDuplicateKeys(t *testing.T) {
	r := NewRegistry(testDeps())
	require.NoError(t, Register(r, FeeDefinition()))
	assert.Error(t, Register(r, FeeDefinition()))

	clash := StudentDefinition()
	clash.Name = Fees
	assert.Error(t, Register(r, clash))
}

func TestDefaultRegistry(t *testing.T) {
	deps := testDeps()
	deps.Remote = config.RemoteConfig{BaseURL: "http://127.0.0.1:1", Timeout: 50 * time.Millisecond, LocalOnly: []string{"attendance", "settings"}}
	r, err := NewDefaultRegistry(deps)
	require.NoError(t, err)

	modules := r.Modules()
	require.Len(t, modules, 15)
	assert.False(t, r.Ready())

	seen := map[string]bool{}
	for i, m := range modules {
		assert.Equal(t, Names()[i], m.Name())
		assert.False(t, seen[m.Key()], "duplicate key %s", m.Key())
		seen[m.Key()] = true
		assert.Equal(t, "/"+m.Name(), m.Path())
		switch m.Name() {
		case Attendance, Settings:
			assert.False(t, m.HasRemote(), m.Name())
		default:
			assert.True(t, m.HasRemote(), m.Name())
		}
	}

	require.NoError(t, r.LoadAll(context.Background()))
	assert.True(t, r.Ready())

	settings, ok := r.Module(Settings)
	require.True(t, ok)
	_, count, err := settings.List()
	require.NoError(t, err)
	assert.Equal(t, len(settingsSeed()), count)

	students, _ := r.Module(Students)
	_, count, err = students.List()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSummariesOfEmptyCollections(t *testing.T) {
	assert.Equal(t, models.CourseSummary{ByStatus: models.CountBy{}}, summarizeCourses(nil))
	assert.Equal(t, models.ResultSummary{}, summarizeResults(nil))
	assert.Equal(t, models.AttendanceSummary{ByStatus: models.CountBy{}}, summarizeAttendance(nil))
}

func TestFeeSummary(t *testing.T) {
	got := summarizeFees([]models.Fee{
		{Amount: 100, Status: models.FeePaid},
		{Amount: 50.5, Status: models.FeePending},
		{Amount: 25, Status: models.FeeOverdue},
	}).(models.FeeSummary)
	assert.Equal(t, 175.5, got.TotalAmount)
	assert.Equal(t, 100.0, got.PaidAmount)
	assert.Equal(t, 75.5, got.Outstanding)
	assert.Equal(t, 3, got.Total)
}
