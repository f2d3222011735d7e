package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Reservation - заявка креатора на одно место в кампании.
type Reservation struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CampaignID uuid.UUID `db:"campaign_id" json:"campaign_id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Status     string    `db:"status" json:"status"`
	ReservedAt time.Time `db:"reserved_at" json:"reserved_at"`
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// IsOverdue сообщает, что бронь не была закрыта публикацией до дедлайна.
func (r *Reservation) IsOverdue(now time.Time) bool {
	return r.Status == ReservationStatusReserved && now.After(r.ExpiresAt)
}

// IsActive сообщает, занимает ли бронь лимит активных заявок.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusReserved || r.Status == ReservationStatusSubmitted
}

// Submission - результат работы креатора по брони.
type Submission struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	ReservationID uuid.UUID      `db:"reservation_id" json:"reservation_id"`
	CampaignID    uuid.UUID      `db:"campaign_id" json:"campaign_id"`
	UserID        uuid.UUID      `db:"user_id" json:"user_id"`
	ContentType   string         `db:"content_type" json:"content_type"`
	ContentLinks  pq.StringArray `db:"content_links" json:"content_links"`
	Notes         *string        `db:"notes" json:"notes,omitempty"`
	ReviewNote    *string        `db:"review_note" json:"review_note,omitempty"`
	SubmittedAt   time.Time      `db:"submitted_at" json:"submitted_at"`
	ReviewedAt    *time.Time     `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// SubmissionWithStatus добавляет статус брони для списка на проверке.
type SubmissionWithStatus struct {
	Submission
	Status string `db:"status" json:"status"`
}

// ReviewOutcome - результат проверки публикации спонсором.
type ReviewOutcome struct {
	Submission  *Submission  `json:"submission"`
	Reservation *Reservation `json:"reservation"`
	Campaign    *Campaign    `json:"campaign"`
	Transaction *Transaction `json:"transaction"`
}

// OverdueCursor - позиция в списке просроченных броней, упорядоченном по (expires_at, id).
type OverdueCursor struct {
	ID        uuid.UUID `db:"id"`
	ExpiresAt time.Time `db:"expires_at"`
}

// SweepResult - итог одной пачки фоновой проверки.
// Scanned считает все выбранные брони, включая те, что не удалось истечь.
type SweepResult struct {
	Expired int
	Scanned int
	Next    *OverdueCursor
}
