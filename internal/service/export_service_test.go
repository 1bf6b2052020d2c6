package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/models"
	appErrors "github.com/noah-isme/edubuild-api/pkg/errors"
)

func newExportServiceForTest(t *testing.T) (*ExportService, *mockProjectRepo) {
	t.Helper()
	approved := sampleProject(projectA, "owner", models.ProjectStatusApproved)
	approved.Title = "Balloon-Powered Car!"
	approved.Materials = []string{"Balloon", "Straw"}
	approved.Steps = []string{"Inflate", "Release"}
	approved.Rating = 4.8
	pending := sampleProject(projectB, "owner", models.ProjectStatusPending)
	repo := newMockProjectRepo(approved, pending)

	projects := NewProjectService(repo, nil, nil, nil, nil, nil, ProjectConfig{})
	svc := NewExportService(projects, repo, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestProjectGuidePDF(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	file, err := svc.ProjectGuide(context.Background(), projectA, nil)
	require.NoError(t, err)
	assert.Equal(t, "balloon-powered-car.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestProjectGuideHonoursVisibility(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, err := svc.ProjectGuide(context.Background(), projectB, strangerClaim)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.ProjectGuide(context.Background(), projectB, ownerClaims)
	assert.NoError(t, err)
}

func TestCatalogCSV(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	file, err := svc.Catalog(context.Background(), dto.ExportFormatCSV, adminClaims)
	require.NoError(t, err)
	assert.Equal(t, "edubuild-projects-20260301.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, catalogHeaders, records[0])
	assert.Equal(t, "Balloon-Powered Car!", records[1][0])
	assert.Equal(t, "Balloon; Straw", records[1][7])
	assert.Equal(t, "pending", records[2][6])
}

func TestCatalogXLSX(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	file, err := svc.Catalog(context.Background(), "XLSX", adminClaims)
	require.NoError(t, err)
	assert.Equal(t, "edubuild-projects-20260301.xlsx", file.Filename)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Body))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("EduBuild Projects")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Title", rows[0][0])
	assert.Equal(t, "4.8", rows[1][5])
}

func TestCatalogPDFAndErrors(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	ctx := context.Background()

	file, err := svc.Catalog(ctx, dto.ExportFormatPDF, adminClaims)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))

	_, err = svc.Catalog(ctx, "docx", adminClaims)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Catalog(ctx, dto.ExportFormatCSV, ownerClaims)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Catalog(ctx, dto.ExportFormatCSV, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "cd-hovercraft", slugify("  CD Hovercraft "))
	assert.Equal(t, "solar-pizza-box-oven", slugify("Solar Pizza-Box  Oven"))
	assert.Equal(t, "project", slugify("!!!"))
}
