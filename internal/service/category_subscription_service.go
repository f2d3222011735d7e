package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/mingree-backend/internal/domain/valueobject"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/validation"
)

// CategorySubscriptionRepository хранит подписки на группы (категория, тир).
type CategorySubscriptionRepository interface {
	Create(ctx context.Context, sub *models.CategorySubscription) error
	List(ctx context.Context, userID uuid.UUID) ([]models.CategorySubscription, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// CategorySubscriptionService управляет подписками креатора. Непустой набор подписок сужает ленту.
type CategorySubscriptionService struct {
	repo  CategorySubscriptionRepository
	users UserReader
}

func NewCategorySubscriptionService(repo CategorySubscriptionRepository, users UserReader) *CategorySubscriptionService {
	return &CategorySubscriptionService{repo: repo, users: users}
}

// Subscribe подписывает креатора на группу. Тир группы не выше тира креатора.
func (s *CategorySubscriptionService) Subscribe(ctx context.Context, userID uuid.UUID, category string, tier int) (*models.CategorySubscription, error) {
	category = validation.NormalizeCategory(category)
	if err := validation.ValidateCategory(category); err != nil {
		return nil, err
	}
	if !valueobject.ValidTier(tier) {
		return nil, apperror.Validation("некорректный тир")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleCreator {
		return nil, apperror.New(apperror.ErrCodeForbidden, "подписки на категории доступны только креаторам")
	}
	if !valueobject.CanAccessTier(user.Tier, tier) {
		return nil, apperror.ErrTierNotEligible
	}

	sub := &models.CategorySubscription{UserID: userID, Category: category, Tier: tier}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *CategorySubscriptionService) List(ctx context.Context, userID uuid.UUID) ([]models.CategorySubscription, error) {
	return s.repo.List(ctx, userID)
}

func (s *CategorySubscriptionService) Unsubscribe(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, id, userID)
}
