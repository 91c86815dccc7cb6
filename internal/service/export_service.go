package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-admin-dashboard/internal/catalog"
	appErrors "github.com/noah-isme/sma-admin-dashboard/pkg/errors"
	"github.com/noah-isme/sma-admin-dashboard/pkg/export"
)

// Export formats accepted by ExportService.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportResult is a rendered table ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders any collection as a CSV or PDF table.
type ExportService struct {
	renderers map[string]renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		renderers: map[string]renderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Export renders the module's current records in the requested format.
func (s *ExportService) Export(m catalog.Module, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	dataset, err := s.buildDataset(m)
	if err != nil {
		return nil, err
	}
	payload, err := r.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("collection exported", zap.String("entity", m.Name()), zap.String("format", format), zap.Int("rows", len(dataset.Rows)))
	return &ExportResult{
		Filename:    fmt.Sprintf("%s_%s.%s", m.Name(), s.now().UTC().Format("20060102_150405"), r.Extension()),
		ContentType: r.ContentType(),
		Payload:     payload,
	}, nil
}

func (s *ExportService) buildDataset(m catalog.Module) (export.Dataset, error) {
	items, err := m.Rows()
	if err != nil {
		return export.Dataset{}, err
	}

	fields := m.Schema().Fields()
	headers := make([]string, 0, len(fields)+1)
	keys := make([]string, 0, len(fields)+1)
	headers = append(headers, "ID")
	keys = append(keys, "id")
	for _, f := range fields {
		label := f.Label
		if label == "" {
			label = f.Name
		}
		headers = append(headers, label)
		keys = append(keys, f.Name)
	}

	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		row := make(map[string]string, len(keys))
		for i, key := range keys {
			row[headers[i]] = formatCell(item[key])
		}
		rows = append(rows, row)
	}

	return export.Dataset{Title: m.Entity() + " export", Headers: headers, Rows: rows}, nil
}

func formatCell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
