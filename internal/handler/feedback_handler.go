package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/models"
	appErrors "github.com/noah-isme/edubuild-api/pkg/errors"
	"github.com/noah-isme/edubuild-api/pkg/response"
)

type feedbackService interface {
	Submit(ctx context.Context, req dto.FeedbackRequest, claims *models.JWTClaims) (*models.Feedback, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Feedback, error)
}

// FeedbackHandler manages project feedback endpoints.
type FeedbackHandler struct {
	service feedbackService
}

// NewFeedbackHandler constructs a feedback handler.
func NewFeedbackHandler(svc feedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: svc}
}

// Submit godoc
// @Summary Submit feedback
// @Description Rate a project; the project's aggregate rating is recomputed
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.FeedbackRequest true "Feedback payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}

	fb, err := h.service.Submit(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "Feedback submitted successfully", fb)
}

// List godoc
// @Summary List project feedback
// @Description Feedback for a project, newest first
// @Tags Feedback
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /feedback/{projectId} [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	items, err := h.service.ListByProject(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
