package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vigilo-hq/workforce-api/internal/models"
	"github.com/vigilo-hq/workforce-api/pkg/export"
	"github.com/vigilo-hq/workforce-api/pkg/storage"
)

type rangeReporter interface {
	Range(ctx context.Context, filter models.StatsRangeFilter) (*RangeReport, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	stats   rangeReporter
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(stats rangeReporter, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		stats:   stats,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the dataset for the job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", sanitizeFilename(string(job.Type)), sanitizeFilename(job.Params.StartDate), timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	start, err := time.Parse("2006-01-02", job.Params.StartDate)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("invalid start date %q", job.Params.StartDate)
	}
	end, err := time.Parse("2006-01-02", job.Params.EndDate)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("invalid end date %q", job.Params.EndDate)
	}

	report, err := s.stats.Range(ctx, models.StatsRangeFilter{
		Type:      job.Type,
		StartDate: start,
		EndDate:   end,
		OfficeID:  job.Params.OfficeID,
	})
	if err != nil {
		return export.Dataset{}, "", err
	}

	title := fmt.Sprintf("Reporte de %s %s a %s", job.Type, job.Params.StartDate, job.Params.EndDate)
	if len(report.Attendances) > 0 || isAttendanceReport(job.Type) {
		return attendanceDataset(report.Attendances), title, nil
	}
	return absenceDataset(report.Absences), title, nil
}

func isAttendanceReport(t models.StatsReportType) bool {
	switch t {
	case models.ReportAttendances, models.ReportLate, models.ReportMorningPresent, models.ReportEveningPresent:
		return true
	default:
		return false
	}
}

func attendanceDataset(records []models.AttendanceRecord) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"Fecha":    r.Day.Format("2006-01-02"),
			"Número":   r.EmployeeNumber,
			"Nombre":   r.FirstName,
			"Apellido": r.LastName,
			"Despacho": derefString(r.OfficeName),
			"Turno":    derefString(r.ShiftName),
			"Entrada":  formatClock(r.CheckIn),
			"Salida":   formatClock(r.CheckOut),
			"Retardo":  formatBool(r.Late),
		})
	}
	return export.Dataset{
		Headers: []string{"Fecha", "Número", "Nombre", "Apellido", "Despacho", "Turno", "Entrada", "Salida", "Retardo"},
		Rows:    rows,
	}
}

func absenceDataset(records []models.AbsenceRow) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"Fecha":    r.Day.Format("2006-01-02"),
			"Número":   r.EmployeeNumber,
			"Nombre":   r.FirstName,
			"Apellido": r.LastName,
			"Despacho": derefString(r.OfficeName),
			"Turno":    r.ShiftName,
			"Horario":  fmt.Sprintf("%s-%s", r.ShiftStart, r.ShiftEnd),
		})
	}
	return export.Dataset{
		Headers: []string{"Fecha", "Número", "Nombre", "Apellido", "Despacho", "Turno", "Horario"},
		Rows:    rows,
	}
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("15:04")
}

func formatBool(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}
