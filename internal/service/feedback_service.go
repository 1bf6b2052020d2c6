package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/models"
	appErrors "github.com/noah-isme/edubuild-api/pkg/errors"
)

type feedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	ListByProject(ctx context.Context, projectID string) ([]models.Feedback, error)
	RatingsByProject(ctx context.Context, projectID string) ([]*int, error)
}

type feedbackProjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
	UpdateRating(ctx context.Context, id string, rating float64) error
}

type feedbackUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// FeedbackService stores feedback and keeps project ratings in step.
type FeedbackService struct {
	feedback  feedbackRepository
	projects  feedbackProjectRepository
	users     feedbackUserRepository
	cache     projectCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeedbackService constructs a FeedbackService. users and cache may be nil.
func NewFeedbackService(feedback feedbackRepository, projects feedbackProjectRepository, users feedbackUserRepository, cache projectCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeedbackService{feedback: feedback, projects: projects, users: users, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Submit stores a feedback row and recomputes the project's aggregate rating.
// Blank author fields default to the caller's account.
func (s *FeedbackService) Submit(ctx context.Context, req dto.FeedbackRequest, claims *models.JWTClaims) (*models.Feedback, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid feedback payload")
	}

	project, err := s.projects.FindByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Project not found")
		}
		return nil, appErrors.Internal(err, "failed to fetch project")
	}

	fb := &models.Feedback{
		ProjectID:  project.ID,
		UserID:     claims.UserID,
		UserName:   strings.TrimSpace(req.UserName),
		SchoolName: strings.TrimSpace(req.SchoolName),
		Feedback:   strings.TrimSpace(req.Feedback),
		Rating:     req.Rating,
	}
	if req.Difficulty != "" {
		difficulty := req.Difficulty
		fb.Difficulty = &difficulty
	}
	s.fillAuthor(ctx, fb)

	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, appErrors.Internal(err, "failed to submit feedback")
	}
	s.metrics.IncFeedback()

	ratings, err := s.feedback.RatingsByProject(ctx, project.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load ratings")
	}
	average := AverageRating(ratings)
	if err := s.projects.UpdateRating(ctx, project.ID, average); err != nil {
		return nil, appErrors.Internal(err, "failed to update project rating")
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, projectCachePattern)
	}

	s.logger.Debug("project rating recomputed", zap.String("project_id", project.ID), zap.Float64("rating", average), zap.Int("count", len(ratings)))
	return fb, nil
}

// ListByProject returns the feedback for a project, newest first. Unknown
// identifiers yield an empty list.
func (s *FeedbackService) ListByProject(ctx context.Context, projectID string) ([]models.Feedback, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return []models.Feedback{}, nil
	}
	items, err := s.feedback.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to fetch feedback")
	}
	return items, nil
}

func (s *FeedbackService) fillAuthor(ctx context.Context, fb *models.Feedback) {
	if s.users == nil || (fb.UserName != "" && fb.SchoolName != "") {
		return
	}
	user, err := s.users.FindByID(ctx, fb.UserID)
	if err != nil {
		s.logger.Debug("feedback author lookup failed", zap.String("user_id", fb.UserID), zap.Error(err))
		return
	}
	if fb.UserName == "" {
		fb.UserName = user.Name
	}
	if fb.SchoolName == "" {
		fb.SchoolName = user.School
	}
}

// AverageRating is the mean of ratings where a missing rating counts as zero
// but still counts towards the divisor. An empty set averages to zero.
func AverageRating(ratings []*int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum int
	for _, r := range ratings {
		if r != nil {
			sum += *r
		}
	}
	return float64(sum) / float64(len(ratings))
}
