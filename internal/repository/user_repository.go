package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/repository/common"
)

// ErrUserNotFound возвращается, когда запись пользователя не найдена.
var ErrUserNotFound = apperror.ErrUserNotFound

const userColumns = `id, email, username, password_hash, role, display_name, is_active, instagram_handle,
	instagram_status, followers_count, tier, balance, stars, subscription_plan, subscription_expires_at,
	last_login_at, deleted_at, created_at, updated_at`

// UserRepository отвечает за работу с таблицами users и user_sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, role, display_name, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING ` + userColumns

	if err := r.db.GetContext(ctx, user, query,
		user.Email, user.Username, user.PasswordHash, user.Role, user.DisplayName,
	); err != nil {
		if name, ok := common.UniqueViolation(err); ok {
			if name == "users_username_key" {
				return apperror.ErrUsernameTaken
			}
			return apperror.ErrEmailTaken
		}
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "get by email", `WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`, email)
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, "get by id", `WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *UserRepository) getOne(ctx context.Context, op, where string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users `+where, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: %s %w", op, err)
	}
	return &user, nil
}

// UpdateProfile меняет отображаемое имя пользователя.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		UPDATE users SET display_name = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+userColumns, userID, displayName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: update profile %w", err)
	}
	return &user, nil
}

// SubmitInstagram сохраняет Instagram аккаунт и число подписчиков, проверка уходит администратору.
func (r *UserRepository) SubmitInstagram(ctx context.Context, userID uuid.UUID, handle string, followers int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		UPDATE users
		SET instagram_handle = $2, followers_count = $3, instagram_status = 'pending', updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+userColumns, userID, handle, followers)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if _, ok := common.UniqueViolation(err); ok {
			return nil, apperror.ErrInstagramTaken
		}
		return nil, fmt.Errorf("user repository: submit instagram %w", err)
	}
	return &user, nil
}

// SetInstagramStatus завершает проверку Instagram. При подтверждении обновляются подписчики и тир.
func (r *UserRepository) SetInstagramStatus(ctx context.Context, userID uuid.UUID, status string, followers int64, tier int) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		UPDATE users
		SET instagram_status = $2, followers_count = $3, tier = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND instagram_handle IS NOT NULL
		RETURNING `+userColumns, userID, status, followers, tier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: set instagram status %w", err)
	}
	return &user, nil
}

// SetActive блокирует или разблокирует пользователя.
func (r *UserRepository) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, userID, active)
	if err != nil {
		return fmt.Errorf("user repository: set active %w", err)
	}
	return common.RowsAffectedOr(res, ErrUserNotFound)
}

// List возвращает пользователей для админки, role и instagramStatus опциональны.
func (r *UserRepository) List(ctx context.Context, role, instagramStatus string, limit, offset int) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE deleted_at IS NULL
		  AND ($1 = '' OR role = $1)
		  AND ($2 = '' OR instagram_status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, role, instagramStatus, limit, offset); err != nil {
		return nil, fmt.Errorf("user repository: list %w", err)
	}
	return users, nil
}

// SoftDelete помечает аккаунт удалённым. Баланс должен быть нулевым, заявок на вывод в обработке быть не должно.
// Также не должно быть кампаний с деньгами в escrow и незакрытых броней: возвраты и выплаты по ним
// зачисляются на баланс пользователя.
func (r *UserRepository) SoftDelete(ctx context.Context, userID uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		balance, err := lockBalance(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !balance.IsZero() {
			return apperror.ErrAccountHasFunds
		}

		var pending int
		if err := tx.GetContext(ctx, &pending, `SELECT COUNT(*) FROM withdrawal_requests WHERE user_id = $1 AND status = 'pending'`, userID); err != nil {
			return fmt.Errorf("user repository: count pending withdrawals %w", err)
		}
		if pending > 0 {
			return apperror.ErrAccountHasFunds
		}

		var open int
		if err := tx.GetContext(ctx, &open, `
			SELECT
				(SELECT COUNT(*) FROM campaigns WHERE sponsor_id = $1 AND escrow_status <> 'settled') +
				(SELECT COUNT(*) FROM reservations WHERE user_id = $1 AND status IN ('reserved', 'submitted'))
		`, userID); err != nil {
			return fmt.Errorf("user repository: count open escrow %w", err)
		}
		if open > 0 {
			return apperror.ErrAccountHasEscrow
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE users SET deleted_at = NOW(), is_active = FALSE, instagram_handle = NULL, updated_at = NOW()
			WHERE id = $1
		`, userID); err != nil {
			return fmt.Errorf("user repository: soft delete %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("user repository: soft delete sessions %w", err)
		}
		return nil
	})
}

// CreateSession сохраняет новую сессию пользователя.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		session.UserID,
		session.RefreshToken,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}

	return nil
}

// DeleteSession удаляет сессию по refresh токену. Возвращает ErrUserNotFound, если сессии уже нет.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE refresh_token = $1`, refreshToken)
	if err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return common.RowsAffectedOr(res, apperror.ErrUnauthorized)
}

// UpdateLastLoginAt обновляет время последнего входа пользователя.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, userID, at); err != nil {
		return fmt.Errorf("user repository: update last login at %w", err)
	}

	return nil
}

// ListSessions возвращает список всех активных сессий пользователя.
func (r *UserRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM user_sessions
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
	`

	sessions := []models.Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("user repository: list sessions %w", err)
	}

	return sessions, nil
}

// DeleteSessionByID удаляет сессию по идентификатору.
func (r *UserRepository) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE id = $1 AND user_id = $2`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("user repository: delete session by id %w", err)
	}

	return common.RowsAffectedOr(result, apperror.New(apperror.ErrCodeNotFound, "сессия не найдена"))
}
