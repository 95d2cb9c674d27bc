package handlers

import (
	"net/http"

	"lifestyle-backend/services"
	"lifestyle-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes a service error as {"error": message, "code": kind}.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := services.KindOf(err)
	if kind == services.KindDownstream {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(kind.HTTPStatus(), gin.H{"error": services.MessageOf(err), "code": string(kind)})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err), "code": string(services.KindValidation)})
}

func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
}
