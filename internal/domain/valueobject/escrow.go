package valueobject

import (
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
)

// ErrEscrowOverdrawn - попытка выплатить или вернуть больше, чем осталось в escrow.
var ErrEscrowOverdrawn = apperror.New(apperror.ErrCodeConflict, "в escrow кампании недостаточно средств")

// EscrowState - суммы escrow одной кампании.
type EscrowState struct {
	Total    decimal.Decimal
	Released decimal.Decimal
	Refunded decimal.Decimal
}

// Held возвращает ещё не распределённый остаток.
func (s EscrowState) Held() decimal.Decimal {
	return s.Total.Sub(s.Released).Sub(s.Refunded)
}

// Status вычисляет статус escrow по суммам.
func (s EscrowState) Status() string {
	settled := s.Released.Add(s.Refunded)
	switch {
	case settled.IsZero():
		return models.EscrowStatusHeld
	case settled.GreaterThanOrEqual(s.Total):
		return models.EscrowStatusSettled
	default:
		return models.EscrowStatusPartiallySettled
	}
}

// Release выплачивает amount из escrow.
func (s EscrowState) Release(amount decimal.Decimal) (EscrowState, error) {
	if amount.GreaterThan(s.Held()) {
		return s, ErrEscrowOverdrawn
	}
	s.Released = s.Released.Add(amount)
	return s, nil
}

// Refund возвращает amount спонсору.
func (s EscrowState) Refund(amount decimal.Decimal) (EscrowState, error) {
	if amount.GreaterThan(s.Held()) {
		return s, ErrEscrowOverdrawn
	}
	s.Refunded = s.Refunded.Add(amount)
	return s, nil
}
