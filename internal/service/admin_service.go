package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/mingree-backend/internal/domain/valueobject"
	"github.com/ignatzorin/mingree-backend/internal/logger"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
)

const platformStatsTTL = 30 * time.Second

// AdminUserRepository - операции админки над пользователями.
type AdminUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, role, instagramStatus string, limit, offset int) ([]models.User, error)
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
	SetInstagramStatus(ctx context.Context, userID uuid.UUID, status string, followers int64, tier int) (*models.User, error)
}

// StatsReader возвращает счётчики площадки.
type StatsReader interface {
	Platform(ctx context.Context) (*models.PlatformStats, error)
}

// AdminService - пользователи, проверка Instagram и сводка площадки.
// Модерация кампаний и выводов живёт в CampaignService и WithdrawalService.
type AdminService struct {
	users    AdminUserRepository
	stats    StatsReader
	escrow   EscrowReader
	cache    *CacheService
	notifier Notifier
}

func NewAdminService(users AdminUserRepository, stats StatsReader, escrow EscrowReader, cache *CacheService, notifier Notifier) *AdminService {
	return &AdminService{
		users:    users,
		stats:    stats,
		escrow:   escrow,
		cache:    cache,
		notifier: notifier,
	}
}

// ListUsers возвращает пользователей с фильтром по роли и статусу Instagram.
func (s *AdminService) ListUsers(ctx context.Context, role, instagramStatus string, limit, offset int) ([]models.User, error) {
	if role != "" && role != models.RoleCreator && role != models.RoleSponsor && role != models.RoleAdmin {
		return nil, apperror.Validation("неизвестная роль")
	}
	switch instagramStatus {
	case "", models.InstagramStatusNone, models.InstagramStatusPending, models.InstagramStatusVerified, models.InstagramStatusRejected:
	default:
		return nil, apperror.Validation("неизвестный статус Instagram")
	}

	limit, offset = normalizePage(limit, offset)
	return s.users.List(ctx, role, instagramStatus, limit, offset)
}

// SetActive блокирует или разблокирует пользователя. Себя заблокировать нельзя.
func (s *AdminService) SetActive(ctx context.Context, adminID, userID uuid.UUID, active bool) error {
	if adminID == userID {
		return apperror.New(apperror.ErrCodeConflict, "нельзя изменить статус собственного аккаунта")
	}
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return err
	}

	logger.L().WithFields(map[string]interface{}{
		"admin_id": adminID,
		"user_id":  userID,
		"active":   active,
	}).Info("admin service: статус пользователя изменён")

	s.InvalidateStats()
	return nil
}

// VerifyInstagram завершает проверку Instagram. При подтверждении фиксируются
// подписчики и пересчитывается тир, при отказе тир не меняется.
func (s *AdminService) VerifyInstagram(ctx context.Context, userID uuid.UUID, approve bool, followers int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.InstagramHandle == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "Instagram аккаунт не привязан")
	}

	if !approve {
		updated, err := s.users.SetInstagramStatus(ctx, userID, models.InstagramStatusRejected, user.FollowersCount, user.Tier)
		if err != nil {
			return nil, err
		}
		notify(s.notifier, userID, EventInstagramRejected, map[string]interface{}{
			"handle": *user.InstagramHandle,
		})
		return updated, nil
	}

	if followers < 0 {
		return nil, apperror.Validation("число подписчиков не может быть отрицательным")
	}
	tier := valueobject.TierFromFollowers(followers)
	updated, err := s.users.SetInstagramStatus(ctx, userID, models.InstagramStatusVerified, followers, tier)
	if err != nil {
		return nil, err
	}

	logger.L().WithFields(map[string]interface{}{
		"user_id":   userID,
		"followers": followers,
		"tier":      tier,
	}).Info("admin service: Instagram подтверждён")

	notify(s.notifier, userID, EventInstagramVerified, map[string]interface{}{
		"handle":    *user.InstagramHandle,
		"followers": followers,
		"tier":      tier,
	})
	return updated, nil
}

// Stats возвращает сводку площадки вместе с агрегатами escrow. Результат кэшируется.
func (s *AdminService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	v, err := s.cache.GetOrSet(ctx, platformStatsKey, platformStatsTTL, func(ctx context.Context) (interface{}, error) {
		stats, err := s.stats.Platform(ctx)
		if err != nil {
			return nil, err
		}
		escrow, err := s.escrow.EscrowTotals(ctx, nil)
		if err != nil {
			return nil, err
		}
		stats.Escrow = *escrow
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.PlatformStats), nil
}

// InvalidateStats сбрасывает кэш сводки после действий, которые её меняют.
func (s *AdminService) InvalidateStats() {
	s.cache.InvalidateStats()
}
