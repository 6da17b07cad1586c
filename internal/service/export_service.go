package service

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/worktrack/timeclock-api/internal/models"
	appErrors "github.com/worktrack/timeclock-api/pkg/errors"
	"github.com/worktrack/timeclock-api/pkg/export"
)

// ExportFormat names a supported report download format.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes with download metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService flattens attendance reports into downloadable files.
type ExportService struct {
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

var exportHeaders = []string{
	"Employee", "Date", "Day type", "Planned minutes",
	"Worked minutes", "Break minutes", "Lateness minutes", "Absence", "Anomalies",
}

// Render flattens the report into one row per (employee, day) and encodes it
// in the requested format.
func (s *ExportService) Render(report *models.AttendanceReport, format ExportFormat) (*ExportResult, error) {
	if report == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "report is required")
	}

	dataset := export.Dataset{Headers: exportHeaders}
	for _, employee := range report.Employees {
		for _, day := range employee.Days {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Employee":         employee.EmployeeName,
				"Date":             day.Date,
				"Day type":         string(day.DayType),
				"Planned minutes":  strconv.Itoa(day.Planned.Minutes),
				"Worked minutes":   strconv.Itoa(day.Actual.WorkedMinutes),
				"Break minutes":    strconv.Itoa(day.Actual.BreakMinutes),
				"Lateness minutes": strconv.Itoa(day.LatenessMinutes),
				"Absence":          yesNo(day.Absence),
				"Anomalies":        joinAnomalies(day.Anomalies),
			})
		}
	}

	base := fmt.Sprintf("attendance_%s_%s", report.Range.From, report.Range.To)
	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv export failed")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: base + ".csv"}, nil
	case FormatPDF:
		title := fmt.Sprintf("Attendance report %s - %s", report.Range.From, report.Range.To)
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf export failed")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: base + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format, expected csv or pdf")
	}
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}

func joinAnomalies(anomalies []models.Anomaly) string {
	if len(anomalies) == 0 {
		return ""
	}
	details := make([]string, 0, len(anomalies))
	for _, a := range anomalies {
		details = append(details, a.Detail)
	}
	return strings.Join(details, "; ")
}
