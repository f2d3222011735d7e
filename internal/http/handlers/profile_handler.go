package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/mingree-backend/internal/dto"
	"github.com/ignatzorin/mingree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/mingree-backend/internal/models"
)

// ProfileUseCase - профиль текущего пользователя.
type ProfileUseCase interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string) (*models.User, error)
	SubmitInstagram(ctx context.Context, userID uuid.UUID, handle string, followers int64) (*models.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// ProfileHandler обслуживает /profile.
type ProfileHandler struct {
	profiles ProfileUseCase
}

func NewProfileHandler(profiles ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetMe обрабатывает GET /profile.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	user, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe обрабатывает PUT /profile.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !common.BindJSON(c, &req) {
		return
	}

	user, err := h.profiles.UpdateProfile(c.Request.Context(), userID, req.DisplayName)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// SubmitInstagram обрабатывает PUT /profile/instagram.
func (h *ProfileHandler) SubmitInstagram(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	var req dto.SubmitInstagramRequest
	if !common.BindJSON(c, &req) {
		return
	}

	user, err := h.profiles.SubmitInstagram(c.Request.Context(), userID, req.Handle, req.Followers)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteMe обрабатывает DELETE /profile.
func (h *ProfileHandler) DeleteMe(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	if err := h.profiles.DeleteAccount(c.Request.Context(), userID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
