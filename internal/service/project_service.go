package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/models"
	appErrors "github.com/noah-isme/edubuild-api/pkg/errors"
)

const projectCachePattern = "projects:*"

type projectRepository interface {
	List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	FindByID(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	UpdateStatus(ctx context.Context, id string, status models.ProjectStatus) error
	ResubmitForReview(ctx context.Context, id string, from models.ProjectStatus) (bool, error)
	Delete(ctx context.Context, id string) error
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type projectCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// ProjectConfig tunes the moderation workflow.
type ProjectConfig struct {
	CacheTTL       time.Duration
	RereviewOnEdit bool
}

// ProjectService implements the catalogue and its moderation workflow.
type ProjectService struct {
	repo      projectRepository
	audit     auditRecorder
	cache     projectCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ProjectConfig
}

// NewProjectService constructs a ProjectService. audit and cache may be nil.
func NewProjectService(repo projectRepository, audit auditRecorder, cache projectCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ProjectConfig) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProjectService{repo: repo, audit: audit, cache: cache, metrics: metrics, validator: validate, logger: logger, cfg: cfg}
}

// List returns the catalogue filtered by query. Callers other than admins
// only ever see approved projects; those lists are served from cache when
// enabled. The boolean reports a cache hit.
func (s *ProjectService) List(ctx context.Context, query dto.ProjectQuery, claims *models.JWTClaims) ([]models.Project, bool, error) {
	filter := models.ProjectFilter{
		MaxBudget:  query.Budget,
		ClassLevel: strings.TrimSpace(query.ClassLevel),
		Subject:    strings.TrimSpace(query.Subject),
	}
	if canModerate(claims) {
		projects, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, false, appErrors.Internal(err, "failed to fetch projects")
		}
		return projects, false, nil
	}

	approved := models.ProjectStatusApproved
	filter.Status = &approved
	key := makeProjectCacheKey("approved", formatBudget(filter.MaxBudget), filter.ClassLevel, filter.Subject)

	if s.cache != nil {
		var cached []models.Project
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	projects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to fetch projects")
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, projects, s.cfg.CacheTTL)
	}
	return projects, false, nil
}

// Get returns a single project honouring moderation visibility.
func (s *ProjectService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Project, error) {
	project, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(claims, project) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Project is pending approval")
	}
	return project, nil
}

// Mine lists every project created by the caller regardless of status.
func (s *ProjectService) Mine(ctx context.Context, claims *models.JWTClaims) ([]models.Project, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	projects, err := s.repo.List(ctx, models.ProjectFilter{CreatedBy: claims.UserID})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to fetch projects")
	}
	return projects, nil
}

// Pending returns the moderation queue.
func (s *ProjectService) Pending(ctx context.Context, claims *models.JWTClaims) ([]models.Project, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !canModerate(claims) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only admins can review projects")
	}
	pending := models.ProjectStatusPending
	projects, err := s.repo.List(ctx, models.ProjectFilter{Status: &pending})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to fetch pending projects")
	}
	return projects, nil
}

// Create stores a new project. Admin submissions are approved immediately,
// everything else waits for moderation.
func (s *ProjectService) Create(ctx context.Context, req dto.ProjectRequest, claims *models.JWTClaims) (*models.Project, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid project payload")
	}

	status := models.ProjectStatusPending
	if canModerate(claims) {
		status = models.ProjectStatusApproved
	}
	owner := claims.UserID
	project := &models.Project{CreatedBy: &owner, Status: status}
	applyProjectRequest(project, req)

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, appErrors.Internal(err, "failed to create project")
	}
	s.invalidate(ctx)
	s.logger.Info("project created", zap.String("project_id", project.ID), zap.String("status", string(project.Status)))
	return project, nil
}

// Update replaces the editable fields of a project owned by the caller.
// Moderation status is never written from the caller's snapshot.
func (s *ProjectService) Update(ctx context.Context, id string, req dto.ProjectRequest, claims *models.JWTClaims) (*models.Project, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid project payload")
	}
	project, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(claims, project) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Not authorized to update this project")
	}

	applyProjectRequest(project, req)
	if err := s.repo.Update(ctx, project); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Project not found")
		}
		return nil, appErrors.Internal(err, "failed to update project")
	}

	if s.cfg.RereviewOnEdit && !canModerate(claims) && project.Status != models.ProjectStatusPending {
		moved, err := s.repo.ResubmitForReview(ctx, project.ID, project.Status)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to resubmit project for review")
		}
		if moved {
			project.Status = models.ProjectStatusPending
		} else if current, err := s.repo.FindByID(ctx, project.ID); err == nil {
			project.Status = current.Status
		}
	}
	s.invalidate(ctx)
	return project, nil
}

// SetStatus moves a project through moderation. Only admins may call it.
func (s *ProjectService) SetStatus(ctx context.Context, id string, req dto.ProjectStatusRequest, claims *models.JWTClaims, meta dto.RequestMeta) (*models.Project, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !canModerate(claims) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only admins can approve projects")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "status must be one of pending, approved, rejected")
	}
	project, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := project.Status
	next := models.ProjectStatus(req.Status)
	if err := s.repo.UpdateStatus(ctx, project.ID, next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Project not found")
		}
		return nil, appErrors.Internal(err, "failed to update project status")
	}
	project.Status = next
	project.UpdatedAt = time.Now().UTC()

	s.record(ctx, claims, models.AuditActionProjectStatus, project.ID,
		map[string]interface{}{"status": previous},
		map[string]interface{}{"status": next},
		meta)
	s.metrics.IncModeration(string(next))
	s.invalidate(ctx)
	return project, nil
}

// Delete removes a project owned by the caller.
func (s *ProjectService) Delete(ctx context.Context, id string, claims *models.JWTClaims, meta dto.RequestMeta) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	project, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(claims, project) {
		return appErrors.Clone(appErrors.ErrForbidden, "Not authorized to delete this project")
	}
	if err := s.repo.Delete(ctx, project.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Project not found")
		}
		return appErrors.Internal(err, "failed to delete project")
	}

	s.record(ctx, claims, models.AuditActionProjectDelete, project.ID,
		map[string]interface{}{"title": project.Title, "status": project.Status},
		nil,
		meta)
	s.invalidate(ctx)
	return nil
}

// Recommend scores the projects visible to the caller against the stated
// preferences and returns the best matches.
func (s *ProjectService) Recommend(ctx context.Context, query dto.RecommendationQuery, claims *models.JWTClaims) ([]dto.ScoredProject, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "budget must be a non-negative number")
	}
	candidates, _, err := s.List(ctx, dto.ProjectQuery{}, claims)
	if err != nil {
		return nil, err
	}
	return Recommend(candidates, query.Budget, query.ClassLevel, query.Subject), nil
}

func (s *ProjectService) find(ctx context.Context, id string) (*models.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Project not found")
	}
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Project not found")
		}
		return nil, appErrors.Internal(err, "failed to fetch project")
	}
	return project, nil
}

func (s *ProjectService) record(ctx context.Context, claims *models.JWTClaims, action, projectID string, oldValues, newValues map[string]interface{}, meta dto.RequestMeta) {
	if s.audit == nil {
		return
	}
	actor := claims.UserID
	resourceID := projectID
	entry := &models.AuditLog{
		UserID:     &actor,
		Action:     action,
		Resource:   models.AuditResourceProject,
		ResourceID: &resourceID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}
	if oldValues != nil {
		entry.OldValues, _ = json.Marshal(oldValues)
	}
	if newValues != nil {
		entry.NewValues, _ = json.Marshal(newValues)
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("audit log write failed", zap.String("action", action), zap.String("project_id", projectID), zap.Error(err))
	}
}

func (s *ProjectService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, projectCachePattern)
}

func applyProjectRequest(project *models.Project, req dto.ProjectRequest) {
	project.Title = strings.TrimSpace(req.Title)
	project.Description = strings.TrimSpace(req.Description)
	project.Image = strings.TrimSpace(req.Image)
	project.Budget = req.Budget
	project.ClassLevel = req.ClassLevel
	project.Subject = req.Subject
	project.Materials = trimAll(req.Materials)
	project.Steps = trimAll(req.Steps)
	project.LearningOutcomes = trimAll(req.LearningOutcomes)
	project.Difficulty = req.Difficulty
	if project.Difficulty == "" {
		project.Difficulty = models.DifficultyMedium
	}
	project.VideoURL = strings.TrimSpace(req.VideoURL)
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func formatBudget(budget *float64) string {
	if budget == nil {
		return "any"
	}
	return strconv.FormatFloat(*budget, 'f', -1, 64)
}

func makeProjectCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 12)
	builder.WriteString("projects")
	for _, part := range parts {
		builder.WriteByte(':')
		if part == "" {
			part = "-"
		}
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}
