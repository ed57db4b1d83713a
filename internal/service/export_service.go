package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/thesis-registry-api/internal/dto"
	"github.com/noah-isme/thesis-registry-api/internal/models"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
	"github.com/noah-isme/thesis-registry-api/pkg/export"
)

// Supported export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

const (
	exportPageSize = 200
	exportMaxRows  = 5000
)

type thesisLister interface {
	List(ctx context.Context, roles *models.RoleContext, query dto.ThesisListQuery) ([]models.ThesisSnapshot, *models.Pagination, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders the theses visible to an actor as CSV or PDF.
type ExportService struct {
	theses thesisLister
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(theses thesisLister, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{theses: theses, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Export renders every visible thesis matching the query, up to a fixed row cap.
func (s *ExportService) Export(ctx context.Context, roles *models.RoleContext, query dto.ThesisListQuery, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %s", format))
	}

	language := query.Language
	if language == "" {
		language = DefaultLanguage
	}
	var theses []models.ThesisSnapshot
	query.PageSize = exportPageSize
	for page := 1; len(theses) < exportMaxRows; page++ {
		query.Page = page
		items, pagination, err := s.theses.List(ctx, roles, query)
		if err != nil {
			return nil, err
		}
		theses = append(theses, items...)
		if len(items) < exportPageSize || len(theses) >= pagination.TotalCount {
			break
		}
	}
	if len(theses) > exportMaxRows {
		theses = theses[:exportMaxRows]
	}

	dataset := thesisDataset(theses, language)
	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Theses")
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("theses exported", zap.String("actor_id", roles.UserID), zap.String("format", format), zap.Int("rows", len(theses)))
	return &ExportFile{
		Filename:    fmt.Sprintf("theses_%s.%s", s.now().UTC().Format("20060102_150405"), format),
		ContentType: contentType,
		Content:     payload,
	}, nil
}

var exportHeaders = []string{"Topic", "Status", "Program", "Authors", "Supervisors", "Start date", "Target date"}

func thesisDataset(theses []models.ThesisSnapshot, language string) export.Dataset {
	rows := make([]map[string]string, 0, len(theses))
	for _, t := range theses {
		program := ""
		if t.Program != nil {
			program = t.Program.Name[language]
		}
		authors := make([]string, 0, len(t.Authors))
		for _, a := range t.Authors {
			authors = append(authors, displayName(a.User))
		}
		supervisors := make([]string, 0, len(t.Supervisions))
		for _, sup := range t.Supervisions {
			supervisors = append(supervisors, fmt.Sprintf("%s (%d%%)", displayName(sup.User), sup.Percentage))
		}
		rows = append(rows, map[string]string{
			"Topic":       t.Topic,
			"Status":      string(t.Status),
			"Program":     program,
			"Authors":     strings.Join(authors, "; "),
			"Supervisors": strings.Join(supervisors, "; "),
			"Start date":  t.StartDate.Format("2006-01-02"),
			"Target date": t.TargetDate.Format("2006-01-02"),
		})
	}
	return export.Dataset{
		Headers: exportHeaders,
		Rows:    rows,
		Widths:  map[string]float64{"Topic": 3, "Program": 2, "Authors": 2, "Supervisors": 2.5},
	}
}

func displayName(u *models.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstNames + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
