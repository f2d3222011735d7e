package models

import "github.com/shopspring/decimal"

// PlatformStats - сводка для админки.
type PlatformStats struct {
	Creators           int             `db:"creators" json:"creators"`
	Sponsors           int             `db:"sponsors" json:"sponsors"`
	PendingCampaigns   int             `db:"pending_campaigns" json:"pending_campaigns"`
	ActiveCampaigns    int             `db:"active_campaigns" json:"active_campaigns"`
	PendingWithdrawals int             `db:"pending_withdrawals" json:"pending_withdrawals"`
	PendingPayouts     decimal.Decimal `db:"pending_payouts" json:"pending_payouts"`
	Escrow             EscrowTotals    `db:"-" json:"escrow"`
}
