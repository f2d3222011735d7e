package valueobject

import (
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
)

type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = models.ReservationStatusReserved
	ReservationSubmitted ReservationStatus = models.ReservationStatusSubmitted
	ReservationApproved  ReservationStatus = models.ReservationStatusApproved
	ReservationRejected  ReservationStatus = models.ReservationStatusRejected
	ReservationExpired   ReservationStatus = models.ReservationStatusExpired
)

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationReserved:  {ReservationSubmitted, ReservationExpired},
	ReservationSubmitted: {ReservationApproved, ReservationRejected},
	ReservationApproved:  {},
	ReservationRejected:  {},
	ReservationExpired:   {},
}

func (s ReservationStatus) IsValid() bool {
	_, ok := reservationTransitions[s]
	return ok
}

func (s ReservationStatus) CanTransitionTo(newStatus ReservationStatus) bool {
	for _, status := range reservationTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// EnsureTransition возвращает ошибку конфликта, если переход запрещён.
func EnsureTransition(from, to string) error {
	current := ReservationStatus(from)
	if !current.IsValid() {
		return apperror.New(apperror.ErrCodeValidation, "некорректный статус брони")
	}
	if !current.CanTransitionTo(ReservationStatus(to)) {
		return apperror.New(apperror.ErrCodeConflict, "бронь в статусе "+from+" нельзя перевести в "+to)
	}
	return nil
}
