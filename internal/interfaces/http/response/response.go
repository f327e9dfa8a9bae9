package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "kitchenware-market.backend/internal/domain/errors"
	"kitchenware-market.backend/pkg/logger"
	"kitchenware-market.backend/pkg/utils"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Paginated sends a page of results with its metadata
func Paginated(c *gin.Context, items interface{}, meta utils.PaginationMeta) {
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": meta,
	})
}

// Error maps err onto an HTTP error response
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)
	if appErr == nil {
		appErr = domainerrors.InternalServerError("internal server error")
	}

	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message, // Backward compatibility
	}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	c.JSON(appErr.Status, body)
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
