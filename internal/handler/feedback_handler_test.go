package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/middleware"
	"github.com/noah-isme/edubuild-api/internal/models"
	appErrors "github.com/noah-isme/edubuild-api/pkg/errors"
)

type feedbackServiceMock struct {
	submitResp  *models.Feedback
	submitErr   error
	lastReq     dto.FeedbackRequest
	lastClaims  *models.JWTClaims
	listResp    []models.Feedback
	lastProject string
}

func (m *feedbackServiceMock) Submit(ctx context.Context, req dto.FeedbackRequest, claims *models.JWTClaims) (*models.Feedback, error) {
	m.lastReq = req
	m.lastClaims = claims
	return m.submitResp, m.submitErr
}

func (m *feedbackServiceMock) ListByProject(ctx context.Context, projectID string) ([]models.Feedback, error) {
	m.lastProject = projectID
	return m.listResp, nil
}

func TestFeedbackHandlerSubmit(t *testing.T) {
	svc := &feedbackServiceMock{submitResp: &models.Feedback{ID: "f1", ProjectID: "p1"}}
	handler := NewFeedbackHandler(svc)

	c, w := newTestContext(http.MethodPost, "/feedback", `{"projectId":"p1","rating":5,"difficulty":"Easy","feedback":"fun"}`)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent})
	handler.Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Feedback submitted successfully", decodeEnvelope(t, w).Message)
	require.NotNil(t, svc.lastReq.Rating)
	assert.Equal(t, 5, *svc.lastReq.Rating)
	require.NotNil(t, svc.lastClaims)
	assert.Equal(t, "u1", svc.lastClaims.UserID)
}

func TestFeedbackHandlerSubmitUnknownProject(t *testing.T) {
	handler := NewFeedbackHandler(&feedbackServiceMock{submitErr: appErrors.Clone(appErrors.ErrNotFound, "Project not found")})

	c, w := newTestContext(http.MethodPost, "/feedback", `{"projectId":"p1","rating":5}`)
	handler.Submit(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedbackHandlerList(t *testing.T) {
	svc := &feedbackServiceMock{listResp: []models.Feedback{{ID: "f2"}, {ID: "f1"}}}
	handler := NewFeedbackHandler(svc)

	c, w := newTestContext(http.MethodGet, "/feedback/p1", "")
	c.Params = gin.Params{{Key: "projectId", Value: "p1"}}
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p1", svc.lastProject)
	var items []models.Feedback
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "f2", items[0].ID)
}
