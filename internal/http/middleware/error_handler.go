package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/mingree-backend/internal/logger"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
)

// ErrorHandler превращает ошибки из c.Errors в ответ {"error": ...}.
// Внутренние ошибки маскируются, клиенту уходит только сообщение AppError.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, message := apperror.HTTPStatus(err)

		entry := logger.L().WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			entry.Error("request error")
		} else {
			entry.Debug("request rejected")
		}

		c.JSON(status, gin.H{"error": message})
	}
}
