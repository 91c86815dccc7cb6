package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-admin-dashboard/internal/catalog"
	"github.com/noah-isme/sma-admin-dashboard/internal/store"
	appErrors "github.com/noah-isme/sma-admin-dashboard/pkg/errors"
)

func newExportFixture(t *testing.T) catalog.Module {
	t.Helper()
	r := catalog.NewRegistry(catalog.Deps{
		Backend: store.NewMemoryBackend(),
		Clock:   func() time.Time { return time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, catalog.Register(r, catalog.FeeDefinition()))
	require.NoError(t, r.LoadAll(context.Background()))
	m, _ := r.Module(catalog.Fees)
	_, err := m.Create(context.Background(), map[string]interface{}{
		"studentName": "Jane Doe", "amount": "150.5", "dueDate": "2024-09-30",
	})
	require.NoError(t, err)
	return m
}

func TestExportServiceCSV(t *testing.T) {
	m := newExportFixture(t)
	svc := NewExportService(nil)
	svc.now = func() time.Time { return time.Date(2024, 9, 2, 10, 30, 0, 0, time.UTC) }

	result, err := svc.Export(m, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "fees_20240902_103000.csv", result.Filename)

	lines := strings.Split(strings.TrimSpace(string(result.Payload)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID,"))
	assert.Contains(t, lines[1], "Jane Doe")
	assert.Contains(t, lines[1], "150.5")
	assert.Contains(t, lines[1], "2024-09-30")
}

func TestExportServicePDF(t *testing.T) {
	m := newExportFixture(t)
	result, err := NewExportService(nil).Export(m, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Payload, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	m := newExportFixture(t)
	_, err := NewExportService(nil).Export(m, "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "1725148800000", formatCell(float64(1725148800000)))
	assert.Equal(t, "2.5", formatCell(2.5))
	assert.Equal(t, "true", formatCell(true))
}
