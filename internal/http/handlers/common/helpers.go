package common

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/mingree-backend/internal/dto"
	"github.com/ignatzorin/mingree-backend/internal/http/middleware"
	"github.com/ignatzorin/mingree-backend/internal/logger"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/service"
)

// ErrUserNotFound возвращается, когда в контексте нет пользователя.
var ErrUserNotFound = errors.New("пользователь не найден в контексте")

// CurrentUserID достаёт userID, который положил AuthMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, ErrUserNotFound
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrUserNotFound
	}

	return userID, nil
}

// CurrentActor возвращает пользователя и роль из контекста.
func CurrentActor(c *gin.Context) (service.Actor, bool) {
	userID, err := CurrentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "требуется авторизация")
		return service.Actor{}, false
	}
	role, _ := c.Get(middleware.ContextRoleKey)
	roleStr, _ := role.(string)
	return service.Actor{ID: userID, Role: roleStr}, true
}

// MustUserID пишет 401 и возвращает false, если пользователя нет в контексте.
func MustUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := CurrentUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "требуется авторизация")
		return uuid.Nil, false
	}
	return userID, true
}

// UUIDParam разбирает UUID из пути и пишет 400 при ошибке.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "параметр "+name+" должен быть валидным UUID")
		return uuid.Nil, false
	}
	return id, true
}

// BindJSON разбирает тело запроса и пишет 400 при ошибке.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		RespondError(c, http.StatusBadRequest, "некорректное тело запроса: "+err.Error())
		return false
	}
	return true
}

// RespondError отправляет {"error": message}.
func RespondError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, dto.ErrorResponse{Error: message})
}

// RespondAppError переводит ошибку сервиса в HTTP статус. Внутренние ошибки логируются и маскируются.
func RespondAppError(c *gin.Context, err error) {
	status, message := apperror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.L().WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("handler: внутренняя ошибка")
	}
	RespondError(c, status, message)
}

// ParseIntQuery читает целый query параметр с запасным значением.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetPagination возвращает limit и offset с ограничениями по умолчанию.
func GetPagination(c *gin.Context) (limit, offset int) {
	limit = ParseIntQuery(c, "limit", 20)
	offset = ParseIntQuery(c, "offset", 0)
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return
}
