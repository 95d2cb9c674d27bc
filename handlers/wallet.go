package handlers

import (
	"net/http"
	"strconv"

	"lifestyle-backend/middleware"
	"lifestyle-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WalletHandler struct {
	Wallets *services.WalletService
	Logger  *zap.Logger
}

func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, _, ok := middleware.SessionUser(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer", "code": string(services.KindValidation)})
			return
		}
		limit = parsed
	}

	summary, err := h.Wallets.Summary(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
