package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/domain/valueobject"
	"github.com/ignatzorin/mingree-backend/internal/dto"
	"github.com/ignatzorin/mingree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/service"
)

// CampaignUseCase - кампании спонсоров и лента креатора.
type CampaignUseCase interface {
	Quote(payAmount decimal.Decimal, spots int) valueobject.Breakdown
	Create(ctx context.Context, sponsorID uuid.UUID, in service.CreateCampaignInput) (*service.CampaignResult, error)
	Get(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Campaign, error)
	Feed(ctx context.Context, userID uuid.UUID, category string, limit, offset int) ([]models.Campaign, error)
	ListMine(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]models.Campaign, error)
	Pause(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Campaign, error)
	Resume(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Campaign, error)
	Close(ctx context.Context, actor service.Actor, id uuid.UUID) (*service.CampaignResult, error)
	UploadCover(ctx context.Context, actor service.Actor, id uuid.UUID, r io.Reader) (*models.Campaign, error)
}

// CampaignHandler обслуживает /campaigns.
type CampaignHandler struct {
	campaigns CampaignUseCase
}

func NewCampaignHandler(campaigns CampaignUseCase) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns}
}

// Feed обрабатывает GET /campaigns: лента креатора с учётом тира и подписок.
func (h *CampaignHandler) Feed(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	limit, offset := common.GetPagination(c)

	list, err := h.campaigns.Feed(c.Request.Context(), userID, c.Query("category"), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(list, limit, offset))
}

// Quote обрабатывает GET /campaigns/quote?pay_amount=&spots=: расчёт списания до создания.
func (h *CampaignHandler) Quote(c *gin.Context) {
	pay, err := decimal.NewFromString(c.Query("pay_amount"))
	if err != nil || !pay.IsPositive() {
		common.RespondError(c, http.StatusBadRequest, "pay_amount должен быть положительным числом")
		return
	}
	spots, err := strconv.Atoi(c.Query("spots"))
	if err != nil || spots < service.MinCampaignSpots || spots > service.MaxCampaignSpots {
		common.RespondError(c, http.StatusBadRequest, "spots должен быть от 1 до 1000")
		return
	}

	c.JSON(http.StatusOK, h.campaigns.Quote(pay, spots))
}

// Create обрабатывает POST /campaigns.
func (h *CampaignHandler) Create(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	var req dto.CreateCampaignRequest
	if !common.BindJSON(c, &req) {
		return
	}

	result, err := h.campaigns.Create(c.Request.Context(), userID, service.CreateCampaignInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Tier:         req.Tier,
		PayAmount:    req.PayAmount,
		ContentTypes: req.ContentTypes,
		TotalSpots:   req.TotalSpots,
		Deadline:     req.Deadline,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListMine обрабатывает GET /campaigns/my.
func (h *CampaignHandler) ListMine(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	limit, offset := common.GetPagination(c)

	list, err := h.campaigns.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(list, limit, offset))
}

// Get обрабатывает GET /campaigns/:id.
func (h *CampaignHandler) Get(c *gin.Context) {
	actor, ok := common.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	campaign, err := h.campaigns.Get(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// Pause обрабатывает POST /campaigns/:id/pause.
func (h *CampaignHandler) Pause(c *gin.Context) {
	h.transition(c, h.campaigns.Pause)
}

// Resume обрабатывает POST /campaigns/:id/resume.
func (h *CampaignHandler) Resume(c *gin.Context) {
	h.transition(c, h.campaigns.Resume)
}

func (h *CampaignHandler) transition(c *gin.Context, fn func(context.Context, service.Actor, uuid.UUID) (*models.Campaign, error)) {
	actor, ok := common.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	campaign, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// Close обрабатывает POST /campaigns/:id/close: остаток escrow возвращается спонсору.
func (h *CampaignHandler) Close(c *gin.Context) {
	actor, ok := common.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.campaigns.Close(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UploadCover обрабатывает POST /campaigns/:id/cover (multipart, поле cover).
func (h *CampaignHandler) UploadCover(c *gin.Context) {
	actor, ok := common.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("cover")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "файл cover обязателен")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "не удалось прочитать файл")
		return
	}
	defer file.Close()

	campaign, err := h.campaigns.UploadCover(c.Request.Context(), actor, id, file)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}
