package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
)

var (
	reservedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sqlLock    = regexp.QuoteMeta(`SELECT balance FROM users WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`)
	sqlActive  = regexp.QuoteMeta(`SELECT COUNT(*) FROM reservations WHERE user_id = $1`)
	sqlInsert  = regexp.QuoteMeta(`INSERT INTO reservations (campaign_id, user_id, status, reserved_at, expires_at, updated_at)`)
	sqlTake    = regexp.QuoteMeta(`UPDATE campaigns SET spots_remaining = spots_remaining - 1, updated_at = NOW() WHERE id = $1 AND spots_remaining > 0`)
	sqlSpots   = regexp.QuoteMeta(`SELECT spots_remaining FROM campaigns WHERE id = $1`)
)

var reservationColumns = []string{"id", "campaign_id", "user_id", "status", "reserved_at", "expires_at", "updated_at"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

// expectReservePrefix описывает блокировку пользователя и подсчёт активных броней.
func expectReservePrefix(mock sqlmock.Sqlmock, userID uuid.UUID, active int) {
	mock.ExpectBegin()
	mock.ExpectQuery(sqlLock).WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("0.00"))
	mock.ExpectQuery(sqlActive).WithArgs(userID, reservedAt).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(active))
}

func reservationRow(id, campaignID, userID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows(reservationColumns).
		AddRow(id.String(), campaignID.String(), userID.String(), models.ReservationStatusReserved, reservedAt, reservedAt.Add(48*time.Hour), reservedAt)
}

func TestReservationRepository_Reserve_TakesSpot(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	campaignID, userID, id := uuid.New(), uuid.New(), uuid.New()

	expectReservePrefix(mock, userID, 0)
	mock.ExpectQuery(sqlInsert).WithArgs(campaignID, userID, reservedAt, reservedAt.Add(48*time.Hour)).
		WillReturnRows(reservationRow(id, campaignID, userID))
	mock.ExpectExec(sqlTake).WithArgs(campaignID, reservedAt).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r, err := repo.Reserve(context.Background(), campaignID, userID, reservedAt, 48*time.Hour, 1)
	require.NoError(t, err)
	assert.Equal(t, id, r.ID)
	assert.Equal(t, reservedAt.Add(48*time.Hour), r.ExpiresAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Reserve_NoRowUpdated(t *testing.T) {
	cases := []struct {
		name    string
		spots   int
		wantErr error
	}{
		{name: "последнее место уже занято", spots: 0, wantErr: apperror.ErrNoSpotsLeft},
		{name: "кампания закрыта или на паузе", spots: 3, wantErr: apperror.ErrCampaignClosed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewReservationRepository(db)
			campaignID, userID := uuid.New(), uuid.New()

			expectReservePrefix(mock, userID, 0)
			mock.ExpectQuery(sqlInsert).WillReturnRows(reservationRow(uuid.New(), campaignID, userID))
			mock.ExpectExec(sqlTake).WithArgs(campaignID, reservedAt).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(sqlSpots).WithArgs(campaignID).
				WillReturnRows(sqlmock.NewRows([]string{"spots_remaining"}).AddRow(tc.spots))
			mock.ExpectRollback()

			_, err := repo.Reserve(context.Background(), campaignID, userID, reservedAt, 48*time.Hour, 1)
			assert.ErrorIs(t, err, tc.wantErr)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReservationRepository_Reserve_DuplicateIsAlreadyReserved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	campaignID, userID := uuid.New(), uuid.New()

	expectReservePrefix(mock, userID, 0)
	mock.ExpectQuery(sqlInsert).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "reservations_campaign_id_user_id_key"})
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), campaignID, userID, reservedAt, 48*time.Hour, 5)
	assert.ErrorIs(t, err, apperror.ErrAlreadyReserved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Reserve_LimitReached(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	userID := uuid.New()

	expectReservePrefix(mock, userID, 1)
	mock.ExpectRollback()

	_, err := repo.Reserve(context.Background(), uuid.New(), userID, reservedAt, 48*time.Hour, 1)
	assert.ErrorIs(t, err, apperror.ErrReservationLimit)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Expire_SkipsChangedReservation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	id := uuid.New()
	now := reservedAt.Add(49 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE reservations SET status = 'expired', updated_at = $2 WHERE id = $1 AND status = 'reserved' AND expires_at < $2`)).
		WithArgs(id, now).
		WillReturnRows(sqlmock.NewRows(reservationColumns))
	mock.ExpectCommit()

	r, err := repo.Expire(context.Background(), id, now)
	require.NoError(t, err)
	assert.Nil(t, r)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_ListOverdue_UsesCursor(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	now := reservedAt.Add(72 * time.Hour)
	after := &models.OverdueCursor{ID: uuid.New(), ExpiresAt: reservedAt.Add(48 * time.Hour)}
	next := uuid.New()

	query := regexp.QuoteMeta(`AND (expires_at, id) > ($2, $3) ORDER BY expires_at, id LIMIT $4`)
	mock.ExpectQuery(query).WithArgs(now, after.ExpiresAt, after.ID, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "expires_at"}).AddRow(next.String(), after.ExpiresAt))
	mock.ExpectQuery(query).WithArgs(now, time.Time{}, uuid.Nil, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "expires_at"}))

	rows, err := repo.ListOverdue(context.Background(), now, after, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, next, rows[0].ID)

	rows, err = repo.ListOverdue(context.Background(), now, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Review_Guards(t *testing.T) {
	sqlReviewSubmission := regexp.QuoteMeta(`UPDATE submissions SET review_note = $2, reviewed_at = $3 WHERE id = $1 AND reviewed_at IS NULL`)
	sqlReviewReservation := regexp.QuoteMeta(`UPDATE reservations SET status = $2, updated_at = $3 WHERE id = $1 AND status = 'submitted'`)
	submissionColumns := []string{"id", "reservation_id", "campaign_id", "user_id", "content_type", "content_links", "notes", "review_note", "submitted_at", "reviewed_at"}
	now := reservedAt.Add(time.Hour)

	t.Run("публикация уже проверена", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(sqlReviewSubmission).WillReturnRows(sqlmock.NewRows(submissionColumns))
		mock.ExpectRollback()

		_, err := repo.Reject(context.Background(), id, "нет ссылки на бренд", now)
		assert.ErrorIs(t, err, apperror.ErrReservationChanged)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("бронь уже не в статусе submitted", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db)
		id, reservationID := uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(sqlReviewSubmission).
			WillReturnRows(sqlmock.NewRows(submissionColumns).AddRow(
				id.String(), reservationID.String(), uuid.NewString(), uuid.NewString(),
				models.ContentTypeReel, "{https://instagram.com/reel/abc}", nil, "ok", reservedAt, now,
			))
		mock.ExpectQuery(sqlReviewReservation).WithArgs(reservationID, models.ReservationStatusApproved, now).
			WillReturnRows(sqlmock.NewRows(reservationColumns))
		mock.ExpectRollback()

		note := "ok"
		_, err := repo.Approve(context.Background(), id, &note, decimal.NewFromInt(1), now)
		assert.ErrorIs(t, err, apperror.ErrReservationChanged)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
