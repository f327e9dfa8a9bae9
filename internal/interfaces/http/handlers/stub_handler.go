package handlers

import (
	"github.com/gin-gonic/gin"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/internal/interfaces/http/response"
)

// NotImplemented answers routes reserved for messaging, transactions and reviews.
func NotImplemented(feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, domainerrors.NotImplemented(feature+" is not available yet"))
	}
}
