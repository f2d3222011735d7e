package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/domain/valueobject"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/repository/common"
)

// ReservationRepository работает с бронями и публикациями креаторов.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository создаёт экземпляр репозитория.
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Reserve занимает место в кампании. Лимит активных броней проверяется под блокировкой
// строки пользователя, место списывается условным UPDATE, поэтому последнее место
// достаётся ровно одному креатору.
func (r *ReservationRepository) Reserve(ctx context.Context, campaignID, userID uuid.UUID, now time.Time, ttl time.Duration, maxActive int) (*models.Reservation, error) {
	var reservation models.Reservation

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := lockBalance(ctx, tx, userID); err != nil {
			return err
		}

		var active int
		if err := tx.GetContext(ctx, &active, `
			SELECT COUNT(*) FROM reservations
			WHERE user_id = $1
			  AND (status = 'submitted' OR (status = 'reserved' AND expires_at >= $2))
		`, userID, now); err != nil {
			return fmt.Errorf("reservation repository: count active %w", err)
		}
		if active >= maxActive {
			return apperror.ErrReservationLimit
		}

		err := tx.GetContext(ctx, &reservation, `
			INSERT INTO reservations (campaign_id, user_id, status, reserved_at, expires_at, updated_at)
			VALUES ($1, $2, 'reserved', $3, $4, $3)
			RETURNING *
		`, campaignID, userID, now, now.Add(ttl))
		if err != nil {
			if _, ok := common.UniqueViolation(err); ok {
				return apperror.ErrAlreadyReserved
			}
			if common.IsForeignKeyViolation(err) {
				return apperror.ErrCampaignNotFound
			}
			return fmt.Errorf("reservation repository: insert %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE campaigns SET spots_remaining = spots_remaining - 1, updated_at = NOW()
			WHERE id = $1
			  AND spots_remaining > 0
			  AND is_approved
			  AND status = 'active'
			  AND (deadline IS NULL OR deadline > $2)
		`, campaignID, now)
		if err != nil {
			return fmt.Errorf("reservation repository: take spot %w", err)
		}
		if err := common.RowsAffectedOr(res, errNoSpot); err != nil {
			if errors.Is(err, errNoSpot) {
				return r.whyNoSpot(ctx, tx, campaignID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &reservation, nil
}

var errNoSpot = errors.New("no spot taken")

func (r *ReservationRepository) whyNoSpot(ctx context.Context, tx *sqlx.Tx, campaignID uuid.UUID) error {
	var spots int
	if err := tx.GetContext(ctx, &spots, `SELECT spots_remaining FROM campaigns WHERE id = $1`, campaignID); err != nil {
		return fmt.Errorf("reservation repository: read spots %w", err)
	}
	if spots == 0 {
		return apperror.ErrNoSpotsLeft
	}
	return apperror.ErrCampaignClosed
}

// GetByID возвращает бронь по идентификатору.
func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return common.GetByID[models.Reservation](ctx, r.db, "reservations", id, apperror.ErrReservationNotFound)
}

// ListByUser возвращает брони креатора, новые первыми.
func (r *ReservationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	err := r.db.SelectContext(ctx, &reservations, `
		SELECT * FROM reservations WHERE user_id = $1
		ORDER BY reserved_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("reservation repository: list by user %w", err)
	}
	return reservations, nil
}

// ListOverdue возвращает просроченные брони после курсора after. Строки, которые не удалось
// истечь, не блокируют следующие пачки: выборка идёт по (expires_at, id).
func (r *ReservationRepository) ListOverdue(ctx context.Context, now time.Time, after *models.OverdueCursor, limit int) ([]models.OverdueCursor, error) {
	var from models.OverdueCursor
	if after != nil {
		from = *after
	}

	rows := []models.OverdueCursor{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, expires_at FROM reservations
		WHERE status = 'reserved' AND expires_at < $1
		  AND (expires_at, id) > ($2, $3)
		ORDER BY expires_at, id
		LIMIT $4
	`, now, from.ExpiresAt, from.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("reservation repository: list overdue %w", err)
	}
	return rows, nil
}

// Expire переводит просроченную бронь в expired и возвращает оплату места спонсору.
// Если бронь уже не в статусе reserved или срок не истёк, возвращает (nil, nil).
func (r *ReservationRepository) Expire(ctx context.Context, id uuid.UUID, now time.Time) (*models.Reservation, error) {
	var expired *models.Reservation

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var res models.Reservation
		err := tx.GetContext(ctx, &res, `
			UPDATE reservations SET status = 'expired', updated_at = $2
			WHERE id = $1 AND status = 'reserved' AND expires_at < $2
			RETURNING *
		`, id, now)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("reservation repository: expire %w", err)
		}

		c, err := lockCampaign(ctx, tx, res.CampaignID)
		if err != nil {
			return err
		}
		reservationID := res.ID
		if _, err := refundToSponsor(ctx, tx, c, &reservationID, c.PayAmount,
			fmt.Sprintf("Возврат: бронь в кампании «%s» истекла", c.Title)); err != nil {
			return err
		}

		expired = &res
		return nil
	})
	if err != nil {
		return nil, err
	}

	return expired, nil
}

// Submit сохраняет публикацию и переводит бронь в submitted.
func (r *ReservationRepository) Submit(ctx context.Context, sub *models.Submission, now time.Time) (*models.Reservation, error) {
	var reservation models.Reservation

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &reservation, `
			UPDATE reservations SET status = 'submitted', updated_at = $3
			WHERE id = $1 AND user_id = $2 AND status = 'reserved' AND expires_at >= $3
			RETURNING *
		`, sub.ReservationID, sub.UserID, now)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrReservationChanged
			}
			return fmt.Errorf("reservation repository: mark submitted %w", err)
		}

		err = tx.GetContext(ctx, sub, `
			INSERT INTO submissions (reservation_id, campaign_id, user_id, content_type, content_links, notes, submitted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		`, sub.ReservationID, reservation.CampaignID, sub.UserID, sub.ContentType, sub.ContentLinks, sub.Notes, now)
		if err != nil {
			if _, ok := common.UniqueViolation(err); ok {
				return apperror.ErrAlreadySubmitted
			}
			return fmt.Errorf("reservation repository: insert submission %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &reservation, nil
}

// GetSubmission возвращает публикацию по идентификатору.
func (r *ReservationRepository) GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	return common.GetByID[models.Submission](ctx, r.db, "submissions", id, apperror.ErrSubmissionNotFound)
}

// GetSubmissionByReservation возвращает публикацию по брони.
func (r *ReservationRepository) GetSubmissionByReservation(ctx context.Context, reservationID uuid.UUID) (*models.Submission, error) {
	var sub models.Submission
	if err := r.db.GetContext(ctx, &sub, `SELECT * FROM submissions WHERE reservation_id = $1`, reservationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("reservation repository: get submission by reservation %w", err)
	}
	return &sub, nil
}

// ListSubmissions возвращает публикации кампании со статусами броней.
func (r *ReservationRepository) ListSubmissions(ctx context.Context, campaignID uuid.UUID, status string, limit, offset int) ([]models.SubmissionWithStatus, error) {
	subs := []models.SubmissionWithStatus{}
	err := r.db.SelectContext(ctx, &subs, `
		SELECT s.*, r.status
		FROM submissions s
		JOIN reservations r ON r.id = s.reservation_id
		WHERE s.campaign_id = $1 AND ($2 = '' OR r.status = $2)
		ORDER BY s.submitted_at
		LIMIT $3 OFFSET $4
	`, campaignID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("reservation repository: list submissions %w", err)
	}
	return subs, nil
}

// Approve принимает публикацию: выплата из escrow, начисление креатору за вычетом TDS, +1 звезда.
func (r *ReservationRepository) Approve(ctx context.Context, submissionID uuid.UUID, note *string, tdsPercent decimal.Decimal, now time.Time) (*models.ReviewOutcome, error) {
	return r.review(ctx, submissionID, models.ReservationStatusApproved, note, now,
		func(tx *sqlx.Tx, out *models.ReviewOutcome) error {
			c := out.Campaign
			if err := moveEscrow(ctx, tx, c, c.PayAmount, decimal.Zero); err != nil {
				return err
			}

			earning := valueobject.Split(c.PayAmount, tdsPercent)
			campaignID, reservationID := c.ID, out.Reservation.ID
			t, err := creditWithLedger(ctx, tx, models.LedgerEntry{
				UserID:        out.Reservation.UserID,
				CampaignID:    &campaignID,
				ReservationID: &reservationID,
				Type:          models.TransactionTypeEarning,
				Amount:        earning.Amount,
				Tax:           earning.Tax,
				Description:   fmt.Sprintf("Оплата за публикацию в кампании «%s»", c.Title),
			})
			if err != nil {
				return err
			}
			out.Transaction = t

			if _, err := tx.ExecContext(ctx, `UPDATE users SET stars = stars + 1, updated_at = NOW() WHERE id = $1`, out.Reservation.UserID); err != nil {
				return fmt.Errorf("reservation repository: add star %w", err)
			}
			return nil
		})
}

// Reject отклоняет публикацию и возвращает оплату места спонсору. Место не освобождается.
func (r *ReservationRepository) Reject(ctx context.Context, submissionID uuid.UUID, reason string, now time.Time) (*models.ReviewOutcome, error) {
	return r.review(ctx, submissionID, models.ReservationStatusRejected, &reason, now,
		func(tx *sqlx.Tx, out *models.ReviewOutcome) error {
			c := out.Campaign
			reservationID := out.Reservation.ID
			t, err := refundToSponsor(ctx, tx, c, &reservationID, c.PayAmount,
				fmt.Sprintf("Возврат: публикация в кампании «%s» отклонена", c.Title))
			if err != nil {
				return err
			}
			out.Transaction = t
			return nil
		})
}

func (r *ReservationRepository) review(ctx context.Context, submissionID uuid.UUID, status string, note *string, now time.Time, settle func(*sqlx.Tx, *models.ReviewOutcome) error) (*models.ReviewOutcome, error) {
	out := &models.ReviewOutcome{}

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var sub models.Submission
		err := tx.GetContext(ctx, &sub, `
			UPDATE submissions SET review_note = $2, reviewed_at = $3
			WHERE id = $1 AND reviewed_at IS NULL
			RETURNING *
		`, submissionID, note, now)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrReservationChanged
			}
			return fmt.Errorf("reservation repository: review submission %w", err)
		}

		var res models.Reservation
		err = tx.GetContext(ctx, &res, `
			UPDATE reservations SET status = $2, updated_at = $3
			WHERE id = $1 AND status = 'submitted'
			RETURNING *
		`, sub.ReservationID, status, now)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrReservationChanged
			}
			return fmt.Errorf("reservation repository: review reservation %w", err)
		}

		c, err := lockCampaign(ctx, tx, sub.CampaignID)
		if err != nil {
			return err
		}

		out.Submission, out.Reservation, out.Campaign = &sub, &res, c
		return settle(tx, out)
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
