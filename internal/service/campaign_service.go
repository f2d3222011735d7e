package service

import (
	"context"
	"io"
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

// Ограничения кампании
const (
	MinCampaignSpots = 1
	MaxCampaignSpots = 1000
)

// CampaignRepository описывает хранилище кампаний.
type CampaignRepository interface {
	Create(ctx context.Context, c *models.Campaign, funding valueobject.Breakdown) (*models.Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	ListFeed(ctx context.Context, userID uuid.UUID, f models.CampaignFilter) ([]models.Campaign, error)
	ListBySponsor(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]models.Campaign, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.Campaign, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (*models.Campaign, error)
	SetCover(ctx context.Context, id uuid.UUID, path string) error
	Approve(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	Reject(ctx context.Context, id uuid.UUID) (*models.Campaign, *models.Transaction, error)
	Close(ctx context.Context, id uuid.UUID) (*models.Campaign, *models.Transaction, error)
}

// UserReader - чтение пользователя для проверок доступа.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ImageStore сохраняет загруженные изображения.
type ImageStore interface {
	SaveImage(ctx context.Context, owner uuid.UUID, r io.Reader) (string, string, error)
	Delete(ctx context.Context, relativePath string) error
}

// CreateCampaignInput - данные новой кампании.
type CreateCampaignInput struct {
	Title        string
	Description  string
	Category     string
	Tier         int
	PayAmount    decimal.Decimal
	ContentTypes []string
	TotalSpots   int
	Deadline     *time.Time
}

// CampaignResult - кампания вместе с проводкой, которую породила операция.
type CampaignResult struct {
	Campaign    *models.Campaign    `json:"campaign"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
}

// CampaignService управляет жизненным циклом кампаний.
type CampaignService struct {
	repo     CampaignRepository
	users    UserReader
	images   ImageStore
	notifier Notifier
	billing  config.BillingConfig
	now      func() time.Time
}

// NewCampaignService создаёт сервис кампаний.
func NewCampaignService(repo CampaignRepository, users UserReader, images ImageStore, notifier Notifier, billing config.BillingConfig) *CampaignService {
	return &CampaignService{
		repo:     repo,
		users:    users,
		images:   images,
		notifier: notifier,
		billing:  billing,
		now:      time.Now,
	}
}

// Quote считает сумму списания за кампанию без её создания.
func (s *CampaignService) Quote(payAmount decimal.Decimal, spots int) valueobject.Breakdown {
	return valueobject.CampaignFunding(payAmount, spots, s.billing.PlatformFeePercent)
}

// Create создаёт кампанию спонсора и сразу переводит бюджет с комиссией в escrow.
func (s *CampaignService) Create(ctx context.Context, sponsorID uuid.UUID, in CreateCampaignInput) (*CampaignResult, error) {
	campaign, err := s.buildCampaign(sponsorID, in)
	if err != nil {
		return nil, err
	}

	sponsor, err := s.users.GetByID(ctx, sponsorID)
	if err != nil {
		return nil, err
	}
	if sponsor.Role != models.RoleSponsor {
		return nil, apperror.ErrForbidden
	}
	if !sponsor.IsActive {
		return nil, apperror.ErrAccountDisabled
	}

	funding := s.Quote(campaign.PayAmount, campaign.TotalSpots)
	payment, err := s.repo.Create(ctx, campaign, funding)
	if err != nil {
		return nil, err
	}

	logger.L().WithFields(map[string]interface{}{
		"campaign_id": campaign.ID,
		"sponsor_id":  sponsorID,
		"budget":      funding.Net.String(),
		"fee":         funding.Tax.String(),
	}).Info("campaign service: кампания создана, ожидает модерации")

	return &CampaignResult{Campaign: campaign, Transaction: payment}, nil
}

func (s *CampaignService) buildCampaign(sponsorID uuid.UUID, in CreateCampaignInput) (*models.Campaign, error) {
	if err := validation.ValidateCampaignText(in.Title, in.Description, in.Category); err != nil {
		return nil, err
	}
	if !valueobject.ValidTier(in.Tier) {
		return nil, apperror.Validation("тир должен быть от 1 до 20")
	}
	pay, err := valueobject.NewAmount(in.PayAmount)
	if err != nil {
		return nil, err
	}
	if in.TotalSpots < MinCampaignSpots || in.TotalSpots > MaxCampaignSpots {
		return nil, apperror.Validation("количество мест должно быть от 1 до 1000")
	}
	if in.Deadline != nil && !in.Deadline.After(s.now()) {
		return nil, apperror.Validation("дедлайн должен быть в будущем")
	}

	contentTypes, err := normalizeContentTypes(in.ContentTypes)
	if err != nil {
		return nil, err
	}

	return &models.Campaign{
		SponsorID:    sponsorID,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Category:     validation.NormalizeCategory(in.Category),
		Tier:         in.Tier,
		PayAmount:    pay,
		ContentTypes: contentTypes,
		TotalSpots:   in.TotalSpots,
		Deadline:     in.Deadline,
	}, nil
}

// normalizeContentTypes оставляет уникальные форматы из reel/post/story.
func normalizeContentTypes(types []string) ([]string, error) {
	if len(types) == 0 {
		return nil, apperror.Validation("укажите хотя бы один формат контента")
	}
	seen := make(map[string]struct{}, len(types))
	out := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if _, ok := models.ValidContentTypes[t]; !ok {
			return nil, apperror.Validation("формат контента должен быть reel, post или story")
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// Get возвращает кампанию с учётом прав: владелец и администратор видят всё,
// креатор только одобренные кампании доступного тира.
func (s *CampaignService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.owns(c.SponsorID) {
		return c, nil
	}
	if !c.IsApproved {
		return nil, apperror.ErrCampaignNotFound
	}
	if actor.Role == models.RoleCreator {
		user, err := s.users.GetByID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if !valueobject.CanAccessTier(user.Tier, c.Tier) {
			return nil, apperror.ErrTierNotEligible
		}
	}
	return c, nil
}

// Feed возвращает ленту кампаний для креатора.
func (s *CampaignService) Feed(ctx context.Context, userID uuid.UUID, category string, limit, offset int) ([]models.Campaign, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit, offset = normalizePage(limit, offset)
	return s.repo.ListFeed(ctx, userID, models.CampaignFilter{
		MaxTier:  user.Tier,
		Category: validation.NormalizeCategory(category),
		Limit:    limit,
		Offset:   offset,
		Now:      s.now(),
	})
}

// ListMine возвращает кампании спонсора.
func (s *CampaignService) ListMine(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]models.Campaign, error) {
	limit, offset = normalizePage(limit, offset)
	return s.repo.ListBySponsor(ctx, sponsorID, limit, offset)
}

// Pause приостанавливает приём броней.
func (s *CampaignService) Pause(ctx context.Context, actor Actor, id uuid.UUID) (*models.Campaign, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repo.UpdateStatus(ctx, id, models.CampaignStatusActive, models.CampaignStatusPaused)
}

// Resume возобновляет приём броней.
func (s *CampaignService) Resume(ctx context.Context, actor Actor, id uuid.UUID) (*models.Campaign, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repo.UpdateStatus(ctx, id, models.CampaignStatusPaused, models.CampaignStatusActive)
}

// Close закрывает кампанию и возвращает спонсору оплату незанятых мест.
// Уже занятые места рассчитываются по мере проверки публикаций.
func (s *CampaignService) Close(ctx context.Context, actor Actor, id uuid.UUID) (*CampaignResult, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	c, refund, err := s.repo.Close(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CampaignResult{Campaign: c, Transaction: refund}, nil
}

// UploadCover сохраняет обложку кампании и удаляет предыдущую.
func (s *CampaignService) UploadCover(ctx context.Context, actor Actor, id uuid.UUID, r io.Reader) (*models.Campaign, error) {
	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	path, _, err := s.images.SaveImage(ctx, c.SponsorID, r)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetCover(ctx, id, path); err != nil {
		_ = s.images.Delete(ctx, path)
		return nil, err
	}

	if c.CoverPath != nil {
		if err := s.images.Delete(ctx, *c.CoverPath); err != nil {
			logger.L().WithError(err).WithField("campaign_id", id).Warn("campaign service: не удалось удалить старую обложку")
		}
	}

	c.CoverPath = &path
	return c, nil
}

// ListPending возвращает кампании на модерации.
func (s *CampaignService) ListPending(ctx context.Context, limit, offset int) ([]models.Campaign, error) {
	limit, offset = normalizePage(limit, offset)
	return s.repo.ListPending(ctx, limit, offset)
}

// Approve публикует кампанию в ленте.
func (s *CampaignService) Approve(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.repo.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	notify(s.notifier, c.SponsorID, EventCampaignApproved, map[string]interface{}{
		"campaign_id": c.ID,
		"title":       c.Title,
	})
	return c, nil
}

// Reject отклоняет кампанию и возвращает спонсору весь бюджет. Комиссия площадки не возвращается.
func (s *CampaignService) Reject(ctx context.Context, id uuid.UUID, reason string) (*CampaignResult, error) {
	reason = strings.TrimSpace(reason)
	if err := validation.ValidateLength("причина", reason, 0, validation.MaxReasonLength); err != nil {
		return nil, err
	}

	c, refund, err := s.repo.Reject(ctx, id)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"campaign_id": c.ID,
		"title":       c.Title,
		"reason":      reason,
	}
	if refund != nil {
		data["refund"] = refund.Amount
	}
	notify(s.notifier, c.SponsorID, EventCampaignRejected, data)

	return &CampaignResult{Campaign: c, Transaction: refund}, nil
}

// owned загружает кампанию и проверяет, что actor её владелец или администратор.
func (s *CampaignService) owned(ctx context.Context, actor Actor, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(c.SponsorID) {
		return nil, apperror.ErrForbidden
	}
	return c, nil
}
