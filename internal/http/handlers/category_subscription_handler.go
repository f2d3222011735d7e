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

type CategorySubscriptionUseCase interface {
	Subscribe(ctx context.Context, userID uuid.UUID, category string, tier int) (*models.CategorySubscription, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.CategorySubscription, error)
	Unsubscribe(ctx context.Context, userID, id uuid.UUID) error
}

// CategorySubscriptionHandler обслуживает /category-subscriptions.
type CategorySubscriptionHandler struct {
	subs CategorySubscriptionUseCase
}

func NewCategorySubscriptionHandler(subs CategorySubscriptionUseCase) *CategorySubscriptionHandler {
	return &CategorySubscriptionHandler{subs: subs}
}

func (h *CategorySubscriptionHandler) List(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}

	list, err := h.subs.List(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *CategorySubscriptionHandler) Subscribe(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	var req dto.CategorySubscriptionRequest
	if !common.BindJSON(c, &req) {
		return
	}

	sub, err := h.subs.Subscribe(c.Request.Context(), userID, req.Category, req.Tier)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *CategorySubscriptionHandler) Unsubscribe(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.subs.Unsubscribe(c.Request.Context(), userID, id); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
