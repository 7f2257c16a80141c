package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dtu-portal/timetable-api/internal/dto"
	"github.com/dtu-portal/timetable-api/internal/models"
	appErrors "github.com/dtu-portal/timetable-api/pkg/errors"
	"github.com/dtu-portal/timetable-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

const lunchCellText = "LUNCH"

type gridProvider interface {
	Settings(ctx context.Context) (*models.TimetableSettings, error)
	Grid(ctx context.Context, query dto.GridQuery) (*dto.GridResponse, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the timetable grid into CSV or PDF downloads. Column
// headers carry the period windows from the same calculator the engine used,
// with the lunch interval as its own column at the boundary.
type ExportService struct {
	timetable gridProvider
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewExportService wires the export dependencies.
func NewExportService(timetable gridProvider, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{timetable: timetable, csv: csv, pdf: pdf, logger: logger}
}

// Render produces the export file for the query in the requested format.
func (s *ExportService) Render(ctx context.Context, query dto.GridQuery, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	grid, err := s.timetable.Grid(ctx, query)
	if err != nil {
		return nil, err
	}
	dataset := gridDataset(grid)

	switch format {
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, exportTitle(query))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable pdf")
		}
		return &ExportFile{Content: content, ContentType: "application/pdf", Filename: "timetable.pdf"}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable csv")
		}
		return &ExportFile{Content: content, ContentType: "text/csv", Filename: "timetable.csv"}, nil
	}
}

func gridDataset(grid *dto.GridResponse) export.Dataset {
	headers := []string{"Day"}
	for _, period := range grid.Periods {
		headers = append(headers, fmt.Sprintf("Period %d (%s-%s)", period.Number, period.StartTime, period.EndTime))
		if grid.Lunch != nil && grid.Lunch.AfterPeriod == period.Number {
			headers = append(headers, fmt.Sprintf("Lunch (%s-%s)", grid.Lunch.StartTime, grid.Lunch.EndTime))
		}
	}

	rows := make([]map[string]string, 0, len(grid.Days))
	for _, day := range grid.Days {
		row := map[string]string{"Day": day.Day}
		column := 1
		for i, period := range grid.Periods {
			row[headers[column]] = cellText(day.Slots, i)
			column++
			if grid.Lunch != nil && grid.Lunch.AfterPeriod == period.Number {
				row[headers[column]] = lunchCellText
				column++
			}
		}
		rows = append(rows, row)
	}

	return export.Dataset{Headers: headers, Rows: rows}
}

func cellText(slots [][]dto.GridCell, index int) string {
	if index >= len(slots) || len(slots[index]) == 0 {
		return ""
	}
	parts := make([]string, 0, len(slots[index]))
	for _, cell := range slots[index] {
		parts = append(parts, fmt.Sprintf("%s %s (%s)", cell.SubjectCode, cell.SubjectName, cell.TeacherName))
	}
	return strings.Join(parts, " / ")
}

func exportTitle(query dto.GridQuery) string {
	parts := []string{"Weekly Timetable"}
	if query.Branch != "" {
		parts = append(parts, strings.ToUpper(query.Branch))
	}
	if query.Semester > 0 {
		parts = append(parts, fmt.Sprintf("Semester %d", query.Semester))
	}
	return strings.Join(parts, " - ")
}
