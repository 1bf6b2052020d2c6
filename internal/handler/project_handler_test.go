package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/middleware"
	"github.com/noah-isme/edubuild-api/internal/models"
	appErrors "github.com/noah-isme/edubuild-api/pkg/errors"
)

type projectServiceMock struct {
	listResp      []models.Project
	listHit       bool
	listErr       error
	lastQuery     dto.ProjectQuery
	lastClaims    *models.JWTClaims
	getResp       *models.Project
	getErr        error
	createResp    *models.Project
	createErr     error
	createCalled  bool
	statusCalled  bool
	statusResp    *models.Project
	statusErr     error
	lastMeta      dto.RequestMeta
	deleteErr     error
	recommendResp []dto.ScoredProject
	lastRecommend dto.RecommendationQuery
	recommendHit  bool
}

func (m *projectServiceMock) List(ctx context.Context, query dto.ProjectQuery, claims *models.JWTClaims) ([]models.Project, bool, error) {
	m.lastQuery = query
	m.lastClaims = claims
	return m.listResp, m.listHit, m.listErr
}

func (m *projectServiceMock) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Project, error) {
	m.lastClaims = claims
	return m.getResp, m.getErr
}

func (m *projectServiceMock) Mine(ctx context.Context, claims *models.JWTClaims) ([]models.Project, error) {
	return m.listResp, m.listErr
}

func (m *projectServiceMock) Pending(ctx context.Context, claims *models.JWTClaims) ([]models.Project, error) {
	return m.listResp, m.listErr
}

func (m *projectServiceMock) Create(ctx context.Context, req dto.ProjectRequest, claims *models.JWTClaims) (*models.Project, error) {
	m.createCalled = true
	return m.createResp, m.createErr
}

func (m *projectServiceMock) Update(ctx context.Context, id string, req dto.ProjectRequest, claims *models.JWTClaims) (*models.Project, error) {
	return m.createResp, m.createErr
}

func (m *projectServiceMock) SetStatus(ctx context.Context, id string, req dto.ProjectStatusRequest, claims *models.JWTClaims, meta dto.RequestMeta) (*models.Project, error) {
	m.statusCalled = true
	m.lastMeta = meta
	return m.statusResp, m.statusErr
}

func (m *projectServiceMock) Delete(ctx context.Context, id string, claims *models.JWTClaims, meta dto.RequestMeta) error {
	m.lastMeta = meta
	return m.deleteErr
}

func (m *projectServiceMock) Recommend(ctx context.Context, query dto.RecommendationQuery, claims *models.JWTClaims) ([]dto.ScoredProject, error) {
	m.recommendHit = true
	m.lastRecommend = query
	return m.recommendResp, nil
}

type exportServiceMock struct {
	file       *dto.ExportFile
	err        error
	lastFormat dto.ExportFormat
}

func (m *exportServiceMock) ProjectGuide(ctx context.Context, id string, claims *models.JWTClaims) (*dto.ExportFile, error) {
	return m.file, m.err
}

func (m *exportServiceMock) Catalog(ctx context.Context, format dto.ExportFormat, claims *models.JWTClaims) (*dto.ExportFile, error) {
	m.lastFormat = format
	return m.file, m.err
}

type envelope struct {
	Data    json.RawMessage        `json:"data"`
	Message string                 `json:"message"`
	Error   *appErrors.Error       `json:"error"`
	Meta    map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestProjectHandlerListParsesFilters(t *testing.T) {
	svc := &projectServiceMock{listResp: []models.Project{{ID: "p1", Title: "Balloon Car"}}, listHit: true}
	handler := NewProjectHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodGet, "/projects?budget=150&classLevel=6-8&subject=Physics", "")
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastQuery.Budget)
	assert.Equal(t, 150.0, *svc.lastQuery.Budget)
	assert.Equal(t, "6-8", svc.lastQuery.ClassLevel)
	assert.Equal(t, "Physics", svc.lastQuery.Subject)
	assert.Nil(t, svc.lastClaims)

	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	var projects []models.Project
	require.NoError(t, json.Unmarshal(env.Data, &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "Balloon Car", projects[0].Title)
}

func TestProjectHandlerListRejectsBadBudget(t *testing.T) {
	svc := &projectServiceMock{}
	handler := NewProjectHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodGet, "/projects?budget=cheap", "")
	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.lastQuery.Budget)
}

func TestProjectHandlerGetForbidden(t *testing.T) {
	svc := &projectServiceMock{getErr: appErrors.Clone(appErrors.ErrForbidden, "Project is pending approval")}
	handler := NewProjectHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodGet, "/projects/p1", "")
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	handler.Get(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Project is pending approval", env.Error.Message)
}

func TestProjectHandlerCreate(t *testing.T) {
	svc := &projectServiceMock{createResp: &models.Project{ID: "p1", Status: models.ProjectStatusPending}}
	handler := NewProjectHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodPost, "/projects", `{"title":"Balloon Car","description":"d","classLevel":"6-8","subject":"Physics"}`)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, svc.createCalled)
	assert.Equal(t, "Project created successfully", decodeEnvelope(t, w).Message)
}

func TestProjectHandlerCreateInvalidBody(t *testing.T) {
	svc := &projectServiceMock{}
	handler := NewProjectHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodPost, "/projects", `{"title":`)
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.createCalled)
}

func TestProjectHandlerSetStatusMessage(t *testing.T) {
	svc := &projectServiceMock{statusResp: &models.Project{ID: "p1", Status: models.ProjectStatusApproved}}
	handler := NewProjectHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodPatch, "/projects/p1/status", `{"status":"approved"}`)
	c.Request.Header.Set("User-Agent", "moderator-ui")
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	handler.SetStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Project approved successfully", decodeEnvelope(t, w).Message)
	assert.Equal(t, "moderator-ui", svc.lastMeta.UserAgent)
}

func TestProjectHandlerSetStatusForbidden(t *testing.T) {
	svc := &projectServiceMock{}
	handler := NewProjectHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodPatch, "/projects/p1/status", `{"status":"approved"}`)
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	handler.SetStatus(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, svc.statusCalled)
}

func TestProjectHandlerSetStatusChecksRoleBeforeBody(t *testing.T) {
	svc := &projectServiceMock{}
	handler := NewProjectHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodPatch, "/projects/p1/status", `{"status":`)
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-2", Role: models.RoleStudent})
	handler.SetStatus(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Only admins can approve projects", env.Error.Message)
	assert.False(t, svc.statusCalled)

	c, w = newTestContext(http.MethodPatch, "/projects/p1/status", `{"status":`)
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	handler.SetStatus(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProjectHandlerSetStatusMalformedBodyFromAdmin(t *testing.T) {
	svc := &projectServiceMock{}
	handler := NewProjectHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodPatch, "/projects/p1/status", `{"status":`)
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	handler.SetStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.statusCalled)
}

func TestProjectHandlerDelete(t *testing.T) {
	svc := &projectServiceMock{}
	handler := NewProjectHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodDelete, "/projects/p1", "")
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	handler.Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Project deleted successfully", decodeEnvelope(t, w).Message)
}

func TestProjectHandlerRecommendationsRequireBudget(t *testing.T) {
	svc := &projectServiceMock{}
	handler := NewProjectHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodGet, "/projects/recommendations?classLevel=6-8", "")
	handler.Recommendations(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.recommendHit)
}

func TestProjectHandlerRecommendations(t *testing.T) {
	svc := &projectServiceMock{recommendResp: []dto.ScoredProject{{Project: models.Project{ID: "p1"}, Score: 39}}}
	handler := NewProjectHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodGet, "/projects/recommendations?budget=200&classLevel=6-8&subject=Physics", "")
	handler.Recommendations(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 200.0, svc.lastRecommend.Budget)
	assert.Equal(t, "Physics", svc.lastRecommend.Subject)

	var items []dto.ScoredProject
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, 39.0, items[0].Score)
}

func TestProjectHandlerExportCatalog(t *testing.T) {
	exp := &exportServiceMock{file: &dto.ExportFile{Filename: "edubuild-projects-20260101.csv", ContentType: "text/csv", Body: []byte("a,b\n")}}
	handler := NewProjectHandler(&projectServiceMock{}, exp)

	c, w := newTestContext(http.MethodGet, "/projects/export?format=csv", "")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	handler.ExportCatalog(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ExportFormatCSV, exp.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "edubuild-projects-20260101.csv")
	assert.Equal(t, "a,b\n", w.Body.String())
}

func TestProjectHandlerExportGuideNotFound(t *testing.T) {
	exp := &exportServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "Project not found")}
	handler := NewProjectHandler(&projectServiceMock{}, exp)

	c, w := newTestContext(http.MethodGet, "/projects/missing/export.pdf", "")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.ExportGuide(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
