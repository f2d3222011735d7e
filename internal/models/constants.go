package models

// Роли пользователей
const (
	RoleCreator = "creator"
	RoleSponsor = "sponsor"
	RoleAdmin   = "admin"
)

// Статусы проверки Instagram
const (
	InstagramStatusNone     = "none"
	InstagramStatusPending  = "pending"
	InstagramStatusVerified = "verified"
	InstagramStatusRejected = "rejected"
)

// Статусы кампаний
const (
	CampaignStatusActive = "active"
	CampaignStatusPaused = "paused"
	CampaignStatusClosed = "closed"
)

// Статусы escrow кампании
const (
	EscrowStatusHeld             = "held"
	EscrowStatusPartiallySettled = "partially_settled"
	EscrowStatusSettled          = "settled"
)

// Форматы контента
const (
	ContentTypeReel  = "reel"
	ContentTypePost  = "post"
	ContentTypeStory = "story"
)

// Статусы бронирований
const (
	ReservationStatusReserved  = "reserved"
	ReservationStatusSubmitted = "submitted"
	ReservationStatusApproved  = "approved"
	ReservationStatusRejected  = "rejected"
	ReservationStatusExpired   = "expired"
)

// Тарифы подписки
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// ValidRoles роли, доступные при регистрации.
var ValidRoles = map[string]struct{}{
	RoleCreator: {},
	RoleSponsor: {},
}

// ValidContentTypes список допустимых форматов контента.
var ValidContentTypes = map[string]struct{}{
	ContentTypeReel:  {},
	ContentTypePost:  {},
	ContentTypeStory: {},
}

// ValidCampaignStatuses список валидных статусов кампаний.
var ValidCampaignStatuses = map[string]struct{}{
	CampaignStatusActive: {},
	CampaignStatusPaused: {},
	CampaignStatusClosed: {},
}
