package handler

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/middleware"
	"github.com/noah-isme/edubuild-api/internal/models"
	appErrors "github.com/noah-isme/edubuild-api/pkg/errors"
	"github.com/noah-isme/edubuild-api/pkg/response"
)

type projectService interface {
	List(ctx context.Context, query dto.ProjectQuery, claims *models.JWTClaims) ([]models.Project, bool, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Project, error)
	Mine(ctx context.Context, claims *models.JWTClaims) ([]models.Project, error)
	Pending(ctx context.Context, claims *models.JWTClaims) ([]models.Project, error)
	Create(ctx context.Context, req dto.ProjectRequest, claims *models.JWTClaims) (*models.Project, error)
	Update(ctx context.Context, id string, req dto.ProjectRequest, claims *models.JWTClaims) (*models.Project, error)
	SetStatus(ctx context.Context, id string, req dto.ProjectStatusRequest, claims *models.JWTClaims, meta dto.RequestMeta) (*models.Project, error)
	Delete(ctx context.Context, id string, claims *models.JWTClaims, meta dto.RequestMeta) error
	Recommend(ctx context.Context, query dto.RecommendationQuery, claims *models.JWTClaims) ([]dto.ScoredProject, error)
}

type exportService interface {
	ProjectGuide(ctx context.Context, id string, claims *models.JWTClaims) (*dto.ExportFile, error)
	Catalog(ctx context.Context, format dto.ExportFormat, claims *models.JWTClaims) (*dto.ExportFile, error)
}

// ProjectHandler serves the project catalogue and moderation endpoints.
type ProjectHandler struct {
	service projectService
	export  exportService
}

// NewProjectHandler constructs a project handler.
func NewProjectHandler(svc projectService, export exportService) *ProjectHandler {
	return &ProjectHandler{service: svc, export: export}
}

// List godoc
// @Summary List projects
// @Description Approved projects for visitors and students, every project for admins
// @Tags Projects
// @Produce json
// @Param budget query number false "Maximum budget"
// @Param classLevel query string false "Class level" Enums(6-8, 9-10, 11-12)
// @Param subject query string false "Subject"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	budget, err := parseBudget(c.Query("budget"))
	if err != nil {
		response.Error(c, err)
		return
	}
	query := dto.ProjectQuery{
		Budget:     budget,
		ClassLevel: strings.TrimSpace(c.Query("classLevel")),
		Subject:    strings.TrimSpace(c.Query("subject")),
	}

	projects, hit, err := h.service.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, projects, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project, nil)
}

// Mine godoc
// @Summary List my projects
// @Description Projects created by the caller in every status
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /projects/mine [get]
func (h *ProjectHandler) Mine(c *gin.Context) {
	projects, err := h.service.Mine(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, projects, nil)
}

// Pending godoc
// @Summary Moderation queue
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /projects/pending [get]
func (h *ProjectHandler) Pending(c *gin.Context) {
	projects, err := h.service.Pending(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, projects, nil)
}

// Recommendations godoc
// @Summary Recommend projects
// @Description Top three visible projects scored against budget, class level and subject
// @Tags Projects
// @Produce json
// @Param budget query number true "Budget ceiling"
// @Param classLevel query string false "Class level"
// @Param subject query string false "Subject"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /projects/recommendations [get]
func (h *ProjectHandler) Recommendations(c *gin.Context) {
	budget, err := parseBudget(c.Query("budget"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if budget == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "budget is required"))
		return
	}

	items, err := h.service.Recommend(c.Request.Context(), dto.RecommendationQuery{
		Budget:     *budget,
		ClassLevel: strings.TrimSpace(c.Query("classLevel")),
		Subject:    strings.TrimSpace(c.Query("subject")),
	}, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create project
// @Description Admin submissions are approved immediately, others wait for moderation
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ProjectRequest true "Project payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid project payload"))
		return
	}

	project, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "Project created successfully", project)
}

// Update godoc
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param payload body dto.ProjectRequest true "Project payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid project payload"))
		return
	}

	project, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Project updated successfully", project)
}

// SetStatus godoc
// @Summary Moderate project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param payload body dto.ProjectStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id}/status [patch]
func (h *ProjectHandler) SetStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if !claims.IsAdmin() {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Only admins can approve projects"))
		return
	}

	var req dto.ProjectStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	project, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req, claims, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, fmt.Sprintf("Project %s successfully", project.Status), project)
}

// Delete godoc
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c), requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Project deleted successfully", nil)
}

// ExportGuide godoc
// @Summary Download project guide
// @Tags Projects
// @Produce application/pdf
// @Param id path string true "Project ID"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id}/export.pdf [get]
func (h *ProjectHandler) ExportGuide(c *gin.Context) {
	file, err := h.export.ProjectGuide(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// ExportCatalog godoc
// @Summary Export catalogue
// @Tags Projects
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "Export format" Enums(csv, xlsx, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /projects/export [get]
func (h *ProjectHandler) ExportCatalog(c *gin.Context) {
	file, err := h.export.Catalog(c.Request.Context(), dto.ExportFormat(c.Query("format")), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func parseBudget(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "budget must be a non-negative number")
	}
	return &value, nil
}
