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

// ReservationUseCase - брони, публикации и их проверка.
type ReservationUseCase interface {
	Reserve(ctx context.Context, userID, campaignID uuid.UUID) (*models.Reservation, error)
	Get(ctx context.Context, actor service.Actor, id uuid.UUID) (*service.ReservationDetail, error)
	ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Reservation, error)
	Submit(ctx context.Context, userID, reservationID uuid.UUID, in service.SubmitInput) (*models.Submission, error)
	ListSubmissions(ctx context.Context, actor service.Actor, campaignID uuid.UUID, status string, limit, offset int) ([]models.SubmissionWithStatus, error)
	ApproveSubmission(ctx context.Context, actor service.Actor, submissionID uuid.UUID, note string) (*models.ReviewOutcome, error)
	RejectSubmission(ctx context.Context, actor service.Actor, submissionID uuid.UUID, reason string) (*models.ReviewOutcome, error)
}

// ReservationHandler обслуживает брони и публикации.
type ReservationHandler struct {
	reservations ReservationUseCase
}

func NewReservationHandler(reservations ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

// Reserve обрабатывает POST /campaigns/:id/reservations.
func (h *ReservationHandler) Reserve(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	campaignID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := h.reservations.Reserve(c.Request.Context(), userID, campaignID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

// ListMine обрабатывает GET /reservations.
func (h *ReservationHandler) ListMine(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	limit, offset := common.GetPagination(c)

	list, err := h.reservations.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(list, limit, offset))
}

// Get обрабатывает GET /reservations/:id.
func (h *ReservationHandler) Get(c *gin.Context) {
	actor, ok := common.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.reservations.Get(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Submit обрабатывает POST /reservations/:id/submission.
func (h *ReservationHandler) Submit(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.SubmitContentRequest
	if !common.BindJSON(c, &req) {
		return
	}

	submission, err := h.reservations.Submit(c.Request.Context(), userID, id, service.SubmitInput{
		ContentType:  req.ContentType,
		ContentLinks: req.ContentLinks,
		Notes:        req.Notes,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// ListSubmissions обрабатывает GET /campaigns/:id/submissions?status=.
func (h *ReservationHandler) ListSubmissions(c *gin.Context) {
	actor, ok := common.CurrentActor(c)
	if !ok {
		return
	}
	campaignID, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	limit, offset := common.GetPagination(c)

	list, err := h.reservations.ListSubmissions(c.Request.Context(), actor, campaignID, c.Query("status"), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(list, limit, offset))
}

// ApproveSubmission обрабатывает POST /submissions/:id/approve.
func (h *ReservationHandler) ApproveSubmission(c *gin.Context) {
	actor, ok := common.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ApproveSubmissionRequest
	if c.Request.ContentLength > 0 && !common.BindJSON(c, &req) {
		return
	}

	outcome, err := h.reservations.ApproveSubmission(c.Request.Context(), actor, id, req.Note)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// RejectSubmission обрабатывает POST /submissions/:id/reject.
func (h *ReservationHandler) RejectSubmission(c *gin.Context) {
	actor, ok := common.CurrentActor(c)
	if !ok {
		return
	}
	id, ok := common.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RejectRequest
	if !common.BindJSON(c, &req) {
		return
	}

	outcome, err := h.reservations.RejectSubmission(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}
