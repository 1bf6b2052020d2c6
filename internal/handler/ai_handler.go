package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/pkg/response"
)

type aiService interface {
	Explain(ctx context.Context, req dto.ExplainRequest) dto.ExplainResponse
	Chat(ctx context.Context, req dto.ChatRequest) dto.ChatResponse
}

// AIHandler exposes the explain and chat assistant. Both endpoints always
// answer 200; a malformed body is treated as an empty request.
type AIHandler struct {
	service aiService
}

// NewAIHandler constructs an AI handler.
func NewAIHandler(svc aiService) *AIHandler {
	return &AIHandler{service: svc}
}

// Explain godoc
// @Summary Explain a project
// @Description Short explanation of a project, canned when the model is unavailable. Returned as data.explanation.
// @Tags AI
// @Accept json
// @Produce json
// @Param payload body dto.ExplainRequest true "Project summary"
// @Success 200 {object} response.Envelope
// @Router /ai/explain [post]
func (h *AIHandler) Explain(c *gin.Context) {
	var req dto.ExplainRequest
	_ = c.ShouldBindJSON(&req)
	response.JSON(c, http.StatusOK, h.service.Explain(c.Request.Context(), req), nil)
}

// Chat godoc
// @Summary Chat with the STEM assistant
// @Description Single chat turn, canned when the model is unavailable. Returned as data.reply.
// @Tags AI
// @Accept json
// @Produce json
// @Param payload body dto.ChatRequest true "Chat message"
// @Success 200 {object} response.Envelope
// @Router /ai/chat [post]
func (h *AIHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	_ = c.ShouldBindJSON(&req)
	response.JSON(c, http.StatusOK, h.service.Chat(c.Request.Context(), req), nil)
}
