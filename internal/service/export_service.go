package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/models"
	appErrors "github.com/noah-isme/edubuild-api/pkg/errors"
	"github.com/noah-isme/edubuild-api/pkg/export"
)

var catalogHeaders = []string{"Title", "Subject", "Class Level", "Difficulty", "Budget", "Rating", "Status", "Materials", "Created At"}

type projectReader interface {
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Project, error)
}

type catalogRepository interface {
	List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
}

type guideRenderer interface {
	RenderGuide(g export.Guide) ([]byte, error)
}

type tableRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportService renders project guides and catalogue exports.
type ExportService struct {
	projects projectReader
	catalog  catalogRepository
	guide    guideRenderer
	tables   map[dto.ExportFormat]tableRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService wires the CSV, XLSX and PDF renderers.
func NewExportService(projects projectReader, catalog catalogRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	pdf := export.NewPDFExporter()
	return &ExportService{
		projects: projects,
		catalog:  catalog,
		guide:    pdf,
		tables: map[dto.ExportFormat]tableRenderer{
			dto.ExportFormatCSV:  export.NewCSVExporter(),
			dto.ExportFormatXLSX: export.NewXLSXExporter(),
			dto.ExportFormatPDF:  pdf,
		},
		logger: logger,
		now:    time.Now,
	}
}

// ProjectGuide renders a printable guide for a project the caller may read.
func (s *ExportService) ProjectGuide(ctx context.Context, id string, claims *models.JWTClaims) (*dto.ExportFile, error) {
	project, err := s.projects.Get(ctx, id, claims)
	if err != nil {
		return nil, err
	}

	meta := []string{
		"Subject: " + project.Subject,
		"Class " + project.ClassLevel,
		"Difficulty: " + project.Difficulty,
		"Budget: " + strconv.FormatFloat(project.Budget, 'f', -1, 64),
	}
	if project.Rating > 0 {
		meta = append(meta, fmt.Sprintf("Rating: %.1f", project.Rating))
	}

	body, err := s.guide.RenderGuide(export.Guide{
		Title:            project.Title,
		Description:      project.Description,
		Meta:             meta,
		Materials:        project.Materials,
		Steps:            project.Steps,
		LearningOutcomes: project.LearningOutcomes,
		VideoURL:         project.VideoURL,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render project guide")
	}
	return &dto.ExportFile{
		Filename:    slugify(project.Title) + ".pdf",
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}

// Catalog exports every project in the requested format. Admin only.
func (s *ExportService) Catalog(ctx context.Context, format dto.ExportFormat, claims *models.JWTClaims) (*dto.ExportFile, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !canModerate(claims) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only admins can export the catalogue")
	}
	if format == "" {
		format = dto.ExportFormatCSV
	}
	renderer, ok := s.tables[dto.ExportFormat(strings.ToLower(string(format)))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be one of csv, xlsx, pdf")
	}

	projects, err := s.catalog.List(ctx, models.ProjectFilter{})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to fetch projects")
	}

	body, err := renderer.Render(catalogDataset(projects), "EduBuild Projects")
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render catalogue")
	}
	s.logger.Info("catalogue exported", zap.String("format", renderer.Extension()), zap.Int("rows", len(projects)))
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("edubuild-projects-%s.%s", s.now().UTC().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func catalogDataset(projects []models.Project) export.Dataset {
	rows := make([]map[string]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, map[string]string{
			"Title":       p.Title,
			"Subject":     p.Subject,
			"Class Level": p.ClassLevel,
			"Difficulty":  p.Difficulty,
			"Budget":      strconv.FormatFloat(p.Budget, 'f', 2, 64),
			"Rating":      strconv.FormatFloat(p.Rating, 'f', 1, 64),
			"Status":      string(p.Status),
			"Materials":   strings.Join(p.Materials, "; "),
			"Created At":  p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: catalogHeaders, Rows: rows}
}

func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "project"
	}
	return slug
}
