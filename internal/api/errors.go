package api

import (
	"errors"
	"net/http"

	"SNCatalog/internal/repository"
	"SNCatalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// writeError 把领域错误映射为 HTTP 状态码；未知错误记日志后返回 500
func writeError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	case errors.Is(err, service.ErrInvalidPage):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page."})
	case errors.Is(err, repository.ErrProtected), errors.Is(err, repository.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidAttribute):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.WithError(err).Error(op + " failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
