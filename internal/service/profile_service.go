package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/mingree-backend/internal/logger"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/validation"
)

// ProfileRepository описывает операции с профилем пользователя.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string) (*models.User, error)
	SubmitInstagram(ctx context.Context, userID uuid.UUID, handle string, followers int64) (*models.User, error)
	SoftDelete(ctx context.Context, userID uuid.UUID) error
}

// ProfileService - профиль, привязка Instagram и удаление аккаунта.
type ProfileService struct {
	repo ProfileRepository
}

// NewProfileService создаёт сервис профиля.
func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile меняет отображаемое имя.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string) (*models.User, error) {
	displayName = strings.TrimSpace(displayName)
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	return s.repo.UpdateProfile(ctx, userID, displayName)
}

// SubmitInstagram привязывает Instagram аккаунт креатора и отправляет его на проверку.
// Тир пересчитывается только после подтверждения администратором.
func (s *ProfileService) SubmitInstagram(ctx context.Context, userID uuid.UUID, handle string, followers int64) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleCreator {
		return nil, apperror.New(apperror.ErrCodeForbidden, "привязать Instagram может только креатор")
	}

	handle = validation.NormalizeInstagramHandle(handle)
	if err := validation.ValidateInstagramHandle(handle); err != nil {
		return nil, err
	}
	if followers < 0 {
		return nil, apperror.Validation("число подписчиков не может быть отрицательным")
	}

	updated, err := s.repo.SubmitInstagram(ctx, userID, handle, followers)
	if err != nil {
		return nil, err
	}

	logger.L().WithFields(map[string]interface{}{
		"user_id":   userID,
		"handle":    handle,
		"followers": followers,
	}).Info("profile service: Instagram отправлен на проверку")

	return updated, nil
}

// DeleteAccount мягко удаляет аккаунт. Баланс должен быть выведен.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, userID); err != nil {
		return err
	}
	logger.L().WithField("user_id", userID).Info("profile service: аккаунт удалён")
	return nil
}
