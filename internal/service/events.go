package service

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/mingree-backend/internal/logger"
)

// События, которые уходят пользователям через WebSocket и сохраняются как уведомления.
const (
	EventCampaignApproved    = "campaign.approved"
	EventCampaignRejected    = "campaign.rejected"
	EventReservationCreated  = "reservation.created"
	EventReservationExpired  = "reservation.expired"
	EventSubmissionReceived  = "submission.received"
	EventSubmissionApproved  = "submission.approved"
	EventSubmissionRejected  = "submission.rejected"
	EventWithdrawalProcessed = "withdrawal.processed"
	EventWithdrawalRejected  = "withdrawal.rejected"
	EventInstagramVerified   = "instagram.verified"
	EventInstagramRejected   = "instagram.rejected"
	EventDepositReceived     = "wallet.deposit"
	EventPromoCredited       = "wallet.promo_credit"
	EventSubscriptionActive  = "subscription.activated"
)

// Notifier доставляет событие пользователю. Реализуется ws.Hub.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// notify отправляет уведомление, ошибка доставки только логируется.
func notify(n Notifier, userID uuid.UUID, event string, data any) {
	if n == nil {
		return
	}
	if err := n.BroadcastToUser(userID, event, data); err != nil {
		logger.L().WithError(err).WithField("event", event).Warn("service: не удалось отправить уведомление")
	}
}
