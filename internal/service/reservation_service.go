package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/config"
	"github.com/ignatzorin/mingree-backend/internal/domain/valueobject"
	"github.com/ignatzorin/mingree-backend/internal/logger"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/validation"
)

// ReservationRepository описывает хранилище броней и публикаций.
type ReservationRepository interface {
	Reserve(ctx context.Context, campaignID, userID uuid.UUID, now time.Time, ttl time.Duration, maxActive int) (*models.Reservation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Reservation, error)
	ListOverdue(ctx context.Context, now time.Time, after *models.OverdueCursor, limit int) ([]models.OverdueCursor, error)
	Expire(ctx context.Context, id uuid.UUID, now time.Time) (*models.Reservation, error)
	Submit(ctx context.Context, sub *models.Submission, now time.Time) (*models.Reservation, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	GetSubmissionByReservation(ctx context.Context, reservationID uuid.UUID) (*models.Submission, error)
	ListSubmissions(ctx context.Context, campaignID uuid.UUID, status string, limit, offset int) ([]models.SubmissionWithStatus, error)
	Approve(ctx context.Context, submissionID uuid.UUID, note *string, tdsPercent decimal.Decimal, now time.Time) (*models.ReviewOutcome, error)
	Reject(ctx context.Context, submissionID uuid.UUID, reason string, now time.Time) (*models.ReviewOutcome, error)
}

// CampaignReader - чтение кампании для проверок доступа.
type CampaignReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
}

// SubmitInput - публикация креатора по брони.
type SubmitInput struct {
	ContentType  string
	ContentLinks []string
	Notes        string
}

// ReservationDetail - бронь вместе с публикацией, если она уже есть.
type ReservationDetail struct {
	*models.Reservation
	Submission *models.Submission `json:"submission,omitempty"`
}

// ReservationService реализует бронирование мест, публикации и их проверку.
type ReservationService struct {
	repo      ReservationRepository
	campaigns CampaignReader
	users     UserReader
	notifier  Notifier
	billing   config.BillingConfig
	ttl       time.Duration
	now       func() time.Time
}

// NewReservationService создаёт сервис броней.
func NewReservationService(repo ReservationRepository, campaigns CampaignReader, users UserReader, notifier Notifier, billing config.BillingConfig, ttl time.Duration) *ReservationService {
	return &ReservationService{
		repo:      repo,
		campaigns: campaigns,
		users:     users,
		notifier:  notifier,
		billing:   billing,
		ttl:       ttl,
		now:       time.Now,
	}
}

// MaxActiveReservations возвращает лимит одновременных броней для тарифа.
func (s *ReservationService) MaxActiveReservations(plan string) int {
	if plan == models.PlanPro {
		return s.billing.ProMaxActive
	}
	return s.billing.FreeMaxActive
}

// Reserve занимает место в кампании для креатора.
func (s *ReservationService) Reserve(ctx context.Context, userID, campaignID uuid.UUID) (*models.Reservation, error) {
	now := s.now()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleCreator {
		return nil, apperror.ErrForbidden
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}
	if !user.IsInstagramVerified() {
		return nil, apperror.ErrInstagramUnverified
	}

	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !campaign.IsApproved {
		return nil, apperror.ErrCampaignNotFound
	}
	if !valueobject.CanAccessTier(user.Tier, campaign.Tier) {
		return nil, apperror.ErrTierNotEligible
	}
	if !campaign.IsOpenAt(now) {
		if campaign.SpotsRemaining <= 0 {
			return nil, apperror.ErrNoSpotsLeft
		}
		return nil, apperror.ErrCampaignClosed
	}

	reservation, err := s.repo.Reserve(ctx, campaignID, userID, now, s.ttl, s.MaxActiveReservations(user.EffectivePlan(now)))
	if err != nil {
		return nil, err
	}

	notify(s.notifier, campaign.SponsorID, EventReservationCreated, map[string]interface{}{
		"campaign_id":    campaign.ID,
		"reservation_id": reservation.ID,
		"creator":        user.Username,
	})

	return reservation, nil
}

// Get возвращает бронь. Просроченная бронь истекает при чтении.
func (s *ReservationService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*ReservationDetail, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.owns(r.UserID) {
		c, err := s.campaigns.GetByID(ctx, r.CampaignID)
		if err != nil {
			return nil, err
		}
		if c.SponsorID != actor.ID {
			return nil, apperror.ErrReservationNotFound
		}
	}

	if r, err = s.expireIfOverdue(ctx, r); err != nil {
		return nil, err
	}

	detail := &ReservationDetail{Reservation: r}
	if r.Status != models.ReservationStatusReserved && r.Status != models.ReservationStatusExpired {
		sub, err := s.repo.GetSubmissionByReservation(ctx, r.ID)
		if err != nil && !errors.Is(err, apperror.ErrSubmissionNotFound) {
			return nil, err
		}
		detail.Submission = sub
	}
	return detail, nil
}

// ListMine возвращает брони креатора с учётом ленивого истечения.
func (s *ReservationService) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Reservation, error) {
	limit, offset = normalizePage(limit, offset)
	list, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	for i := range list {
		r, err := s.expireIfOverdue(ctx, &list[i])
		if err != nil {
			return nil, err
		}
		list[i] = *r
	}
	return list, nil
}

// Submit отправляет публикацию по брони. После истечения срока брони отправка невозможна.
func (s *ReservationService) Submit(ctx context.Context, userID, reservationID uuid.UUID, in SubmitInput) (*models.Submission, error) {
	r, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, apperror.ErrReservationNotFound
	}

	if r, err = s.expireIfOverdue(ctx, r); err != nil {
		return nil, err
	}
	switch status := valueobject.ReservationStatus(r.Status); {
	case status == valueobject.ReservationExpired:
		return nil, apperror.ErrReservationExpired
	case !status.CanTransitionTo(valueobject.ReservationSubmitted):
		return nil, apperror.ErrAlreadySubmitted
	}

	campaign, err := s.campaigns.GetByID(ctx, r.CampaignID)
	if err != nil {
		return nil, err
	}

	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	if !campaign.AllowsContentType(contentType) {
		return nil, apperror.Validation("этот формат контента не разрешён в кампании")
	}
	links := make([]string, 0, len(in.ContentLinks))
	for _, l := range in.ContentLinks {
		links = append(links, strings.TrimSpace(l))
	}
	if err := validation.ValidateContentLinks(links); err != nil {
		return nil, err
	}

	sub := &models.Submission{
		ReservationID: r.ID,
		UserID:        userID,
		ContentType:   contentType,
		ContentLinks:  links,
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		if err := validation.ValidateLength("комментарий", notes, 1, validation.MaxNotesLength); err != nil {
			return nil, err
		}
		sub.Notes = &notes
	}

	if _, err := s.repo.Submit(ctx, sub, s.now()); err != nil {
		if errors.Is(err, apperror.ErrReservationChanged) {
			return nil, s.explainChanged(ctx, reservationID)
		}
		return nil, err
	}

	notify(s.notifier, campaign.SponsorID, EventSubmissionReceived, map[string]interface{}{
		"campaign_id":   campaign.ID,
		"submission_id": sub.ID,
	})

	return sub, nil
}

// explainChanged уточняет причину, по которой бронь ушла из статуса reserved между чтением и записью.
func (s *ReservationService) explainChanged(ctx context.Context, id uuid.UUID) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch status := valueobject.ReservationStatus(r.Status); {
	case status == valueobject.ReservationExpired, r.IsOverdue(s.now()):
		return apperror.ErrReservationExpired
	case status.CanTransitionTo(valueobject.ReservationSubmitted):
		return apperror.ErrReservationChanged
	default:
		return apperror.ErrAlreadySubmitted
	}
}

// ListSubmissions возвращает публикации кампании владельцу или администратору.
func (s *ReservationService) ListSubmissions(ctx context.Context, actor Actor, campaignID uuid.UUID, status string, limit, offset int) ([]models.SubmissionWithStatus, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !actor.owns(c.SponsorID) {
		return nil, apperror.ErrForbidden
	}
	if status != "" && !valueobject.ReservationStatus(status).IsValid() {
		return nil, apperror.Validation("некорректный статус")
	}

	limit, offset = normalizePage(limit, offset)
	return s.repo.ListSubmissions(ctx, campaignID, status, limit, offset)
}

// ApproveSubmission принимает публикацию: оплата креатору из escrow и звезда в рейтинг.
func (s *ReservationService) ApproveSubmission(ctx context.Context, actor Actor, submissionID uuid.UUID, note string) (*models.ReviewOutcome, error) {
	if _, err := s.reviewable(ctx, actor, submissionID, models.ReservationStatusApproved); err != nil {
		return nil, err
	}

	var notePtr *string
	if note = strings.TrimSpace(note); note != "" {
		if err := validation.ValidateLength("комментарий", note, 1, validation.MaxNotesLength); err != nil {
			return nil, err
		}
		notePtr = &note
	}

	out, err := s.repo.Approve(ctx, submissionID, notePtr, s.billing.CreatorTDSPercent, s.now())
	if err != nil {
		return nil, err
	}

	logger.L().WithFields(map[string]interface{}{
		"submission_id": submissionID,
		"campaign_id":   out.Campaign.ID,
		"creator_id":    out.Reservation.UserID,
		"net":           out.Transaction.Net.String(),
	}).Info("reservation service: публикация принята, выплата начислена")

	notify(s.notifier, out.Reservation.UserID, EventSubmissionApproved, map[string]interface{}{
		"campaign_id":   out.Campaign.ID,
		"submission_id": submissionID,
		"amount":        out.Transaction.Amount,
		"tax":           out.Transaction.Tax,
		"net":           out.Transaction.Net,
	})

	return out, nil
}

// RejectSubmission отклоняет публикацию с причиной, оплата места возвращается спонсору.
func (s *ReservationService) RejectSubmission(ctx context.Context, actor Actor, submissionID uuid.UUID, reason string) (*models.ReviewOutcome, error) {
	reason = strings.TrimSpace(reason)
	if err := validation.ValidateLength("причина", reason, 1, validation.MaxReasonLength); err != nil {
		return nil, err
	}

	if _, err := s.reviewable(ctx, actor, submissionID, models.ReservationStatusRejected); err != nil {
		return nil, err
	}

	out, err := s.repo.Reject(ctx, submissionID, reason, s.now())
	if err != nil {
		return nil, err
	}

	notify(s.notifier, out.Reservation.UserID, EventSubmissionRejected, map[string]interface{}{
		"campaign_id":   out.Campaign.ID,
		"submission_id": submissionID,
		"reason":        reason,
	})

	return out, nil
}

// reviewable проверяет, что actor может проверять публикацию и бронь допускает переход в target.
func (s *ReservationService) reviewable(ctx context.Context, actor Actor, submissionID uuid.UUID, target string) (*models.Submission, error) {
	sub, err := s.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	c, err := s.campaigns.GetByID(ctx, sub.CampaignID)
	if err != nil {
		return nil, err
	}
	if !actor.owns(c.SponsorID) {
		return nil, apperror.ErrForbidden
	}
	if sub.ReviewedAt != nil {
		return nil, apperror.ErrReservationChanged
	}

	r, err := s.repo.GetByID(ctx, sub.ReservationID)
	if err != nil {
		return nil, err
	}
	if err := valueobject.EnsureTransition(r.Status, target); err != nil {
		return nil, err
	}
	return sub, nil
}

// ExpireOverdue истекает до batch просроченных броней после курсора after.
// Ошибка по отдельной брони логируется, курсор всё равно сдвигается за неё.
func (s *ReservationService) ExpireOverdue(ctx context.Context, after *models.OverdueCursor, batch int) (models.SweepResult, error) {
	now := s.now()
	rows, err := s.repo.ListOverdue(ctx, now, after, batch)
	if err != nil {
		return models.SweepResult{}, err
	}

	result := models.SweepResult{Scanned: len(rows)}
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Next = &rows[i]

		r, err := s.repo.Expire(ctx, rows[i].ID, now)
		if err != nil {
			logger.L().WithError(err).WithField("reservation_id", rows[i].ID).Error("reservation service: не удалось истечь бронь")
			continue
		}
		if r != nil {
			result.Expired++
			s.notifyExpired(r)
		}
	}
	return result, nil
}

// expireIfOverdue сохраняет истечение брони, срок которой прошёл.
func (s *ReservationService) expireIfOverdue(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	now := s.now()
	if !r.IsOverdue(now) {
		return r, nil
	}

	expired, err := s.repo.Expire(ctx, r.ID, now)
	if err != nil {
		return nil, err
	}
	if expired == nil {
		// бронь уже изменил параллельный запрос
		return s.repo.GetByID(ctx, r.ID)
	}
	s.notifyExpired(expired)
	return expired, nil
}

func (s *ReservationService) notifyExpired(r *models.Reservation) {
	notify(s.notifier, r.UserID, EventReservationExpired, map[string]interface{}{
		"campaign_id":    r.CampaignID,
		"reservation_id": r.ID,
	})
}
