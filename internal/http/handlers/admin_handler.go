package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/mingree-backend/internal/dto"
	"github.com/ignatzorin/mingree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/service"
)

// AdminUseCase - пользователи и сводка площадки.
type AdminUseCase interface {
	ListUsers(ctx context.Context, role, instagramStatus string, limit, offset int) ([]models.User, error)
	SetActive(ctx context.Context, adminID, userID uuid.UUID, active bool) error
	VerifyInstagram(ctx context.Context, userID uuid.UUID, approve bool, followers int64) (*models.User, error)
	Stats(ctx context.Context) (*models.PlatformStats, error)
	InvalidateStats()
}

// CampaignModeration - модерация новых кампаний.
type CampaignModeration interface {
	ListPending(ctx context.Context, limit, offset int) ([]models.Campaign, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*service.CampaignResult, error)
}

// WithdrawalModeration - обработка заявок на вывод.
type WithdrawalModeration interface {
	ListPending(ctx context.Context, limit, offset int) ([]models.WithdrawalRequest, error)
	Approve(ctx context.Context, id uuid.UUID, utr string) (*models.WithdrawalRequest, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*models.WithdrawalRequest, error)
}

// PromoAdmin - управление промокодами.
type PromoAdmin interface {
	CreatePromo(ctx context.Context, in service.CreatePromoInput) (*models.PromoCode, error)
	ListPromos(ctx context.Context, limit, offset int) ([]models.PromoCode, error)
	DeactivatePromo(ctx context.Context, id uuid.UUID) error
}

// AdminHandler обслуживает /admin.
type AdminHandler struct {
	admin       AdminUseCase
	campaigns   CampaignModeration
	withdrawals WithdrawalModeration
	promos      PromoAdmin
}

func NewAdminHandler(admin AdminUseCase, campaigns CampaignModeration, withdrawals WithdrawalModeration, promos PromoAdmin) *AdminHandler {
	return &AdminHandler{
		admin:       admin,
		campaigns:   campaigns,
		withdrawals: withdrawals,
		promos:      promos,
	}
}

// ListUsers обрабатывает GET /admin/users?role=&instagram_status=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	list, err := h.admin.ListUsers(c.Request.Context(), c.Query("role"), c.Query("instagram_status"), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(list, limit, offset))
}

// SetActive обрабатывает PUT /admin/users/:id/active.
func (h *AdminHandler) SetActive(c *gin.Context) {
	adminID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	userID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if !common.BindJSON(c, &req) {
		return
	}

	if err := h.admin.SetActive(c.Request.Context(), adminID, userID, *req.Active); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// VerifyInstagram обрабатывает POST /admin/users/:id/instagram.
func (h *AdminHandler) VerifyInstagram(c *gin.Context) {
	userID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.VerifyInstagramRequest
	if !common.BindJSON(c, &req) {
		return
	}

	user, err := h.admin.VerifyInstagram(c.Request.Context(), userID, *req.Approve, req.Followers)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListPendingCampaigns обрабатывает GET /admin/campaigns/pending.
func (h *AdminHandler) ListPendingCampaigns(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	list, err := h.campaigns.ListPending(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(list, limit, offset))
}

// ApproveCampaign обрабатывает POST /admin/campaigns/:id/approve.
func (h *AdminHandler) ApproveCampaign(c *gin.Context) {
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	campaign, err := h.campaigns.Approve(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.admin.InvalidateStats()
	c.JSON(http.StatusOK, campaign)
}

// RejectCampaign обрабатывает POST /admin/campaigns/:id/reject. Escrow возвращается целиком.
func (h *AdminHandler) RejectCampaign(c *gin.Context) {
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RejectRequest
	if !common.BindJSON(c, &req) {
		return
	}

	result, err := h.campaigns.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.admin.InvalidateStats()
	c.JSON(http.StatusOK, result)
}

// ListPendingWithdrawals обрабатывает GET /admin/withdrawals/pending.
func (h *AdminHandler) ListPendingWithdrawals(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	list, err := h.withdrawals.ListPending(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(list, limit, offset))
}

// ApproveWithdrawal обрабатывает POST /admin/withdrawals/:id/approve.
func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ApproveWithdrawalRequest
	if !common.BindJSON(c, &req) {
		return
	}

	w, err := h.withdrawals.Approve(c.Request.Context(), id, req.UTR)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.admin.InvalidateStats()
	c.JSON(http.StatusOK, w)
}

// RejectWithdrawal обрабатывает POST /admin/withdrawals/:id/reject.
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RejectRequest
	if !common.BindJSON(c, &req) {
		return
	}

	w, err := h.withdrawals.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.admin.InvalidateStats()
	c.JSON(http.StatusOK, w)
}

// CreatePromo обрабатывает POST /admin/promo-codes.
func (h *AdminHandler) CreatePromo(c *gin.Context) {
	var req dto.CreatePromoRequest
	if !common.BindJSON(c, &req) {
		return
	}

	promo, err := h.promos.CreatePromo(c.Request.Context(), service.CreatePromoInput{
		Code:      req.Code,
		Kind:      req.Kind,
		Value:     req.Value,
		TrialDays: req.TrialDays,
		MaxUses:   req.MaxUses,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, promo)
}

// ListPromos обрабатывает GET /admin/promo-codes.
func (h *AdminHandler) ListPromos(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	list, err := h.promos.ListPromos(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(list, limit, offset))
}

// DeactivatePromo обрабатывает DELETE /admin/promo-codes/:id.
func (h *AdminHandler) DeactivatePromo(c *gin.Context) {
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.promos.DeactivatePromo(c.Request.Context(), id); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Stats обрабатывает GET /admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
