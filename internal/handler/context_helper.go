package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/middleware"
	"github.com/noah-isme/edubuild-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func requestMeta(c *gin.Context) dto.RequestMeta {
	return dto.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}
