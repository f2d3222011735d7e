package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/mingree-backend/internal/config"
	"github.com/ignatzorin/mingree-backend/internal/http/handlers"
	"github.com/ignatzorin/mingree-backend/internal/http/middleware"
	"github.com/ignatzorin/mingree-backend/internal/models"
)

// Handlers собирает все HTTP хэндлеры приложения.
type Handlers struct {
	Auth                 *handlers.AuthHandler
	Profile              *handlers.ProfileHandler
	Campaign             *handlers.CampaignHandler
	Reservation          *handlers.ReservationHandler
	Wallet               *handlers.WalletHandler
	Withdrawal           *handlers.WithdrawalHandler
	Subscription         *handlers.SubscriptionHandler
	CategorySubscription *handlers.CategorySubscriptionHandler
	Notification         *handlers.NotificationHandler
	Admin                *handlers.AdminHandler
	Health               *handlers.HealthHandler
	WS                   *handlers.WSHandler
	Seed                 *handlers.SeedHandler
}

func SetupRouter(
	cfg *config.Config,
	h Handlers,
	tokens middleware.AccessParser,
	limitStore limiter.Store,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")
	api.GET("/ws", h.WS.Handle)

	if h.Seed != nil && cfg.Env == "development" {
		api.POST("/seed", h.Seed.Seed)
	}

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(limitStore, cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))
	{
		protected.GET("/auth/sessions", h.Auth.ListSessions)
		protected.DELETE("/auth/sessions/:id", middleware.UUIDValidator("id"), h.Auth.DeleteSession)

		protected.GET("/profile", h.Profile.GetMe)
		protected.PUT("/profile", h.Profile.UpdateMe)
		protected.DELETE("/profile", h.Profile.DeleteMe)

		protected.GET("/campaigns/:id", middleware.UUIDValidator("id"), h.Campaign.Get)
		protected.GET("/reservations/:id", middleware.UUIDValidator("id"), h.Reservation.Get)
		protected.GET("/sponsors/:id/wallet", middleware.UUIDValidator("id"), h.Wallet.Summary)
		protected.GET("/wallet/transactions", h.Wallet.Transactions)

		protected.POST("/bank-accounts", h.Withdrawal.AddBankAccount)
		protected.GET("/bank-accounts", h.Withdrawal.ListBankAccounts)
		protected.POST("/withdrawals", h.Withdrawal.Request)
		protected.GET("/withdrawals", h.Withdrawal.ListMine)

		protected.GET("/subscriptions/plans", h.Subscription.Plans)
		protected.POST("/subscriptions/purchase", h.Subscription.Purchase)
		protected.POST("/promo-codes/apply", h.Subscription.ApplyPromo)

		protected.GET("/notifications", h.Notification.ListNotifications)
		protected.GET("/notifications/unread/count", h.Notification.CountUnread)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllAsRead)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkAsRead)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), h.Notification.DeleteNotification)
	}

	creator := protected.Group("/")
	creator.Use(middleware.RequireRole(models.RoleCreator))
	{
		creator.PUT("/profile/instagram", h.Profile.SubmitInstagram)
		creator.GET("/campaigns", h.Campaign.Feed)
		creator.POST("/campaigns/:id/reservations", middleware.UUIDValidator("id"), h.Reservation.Reserve)
		creator.GET("/reservations", h.Reservation.ListMine)
		creator.POST("/reservations/:id/submission", middleware.UUIDValidator("id"), h.Reservation.Submit)

		creator.GET("/category-subscriptions", h.CategorySubscription.List)
		creator.POST("/category-subscriptions", h.CategorySubscription.Subscribe)
		creator.DELETE("/category-subscriptions/:id", middleware.UUIDValidator("id"), h.CategorySubscription.Unsubscribe)
	}

	sponsor := protected.Group("/")
	sponsor.Use(middleware.RequireRole(models.RoleSponsor))
	{
		sponsor.GET("/campaigns/quote", h.Campaign.Quote)
		sponsor.POST("/campaigns", h.Campaign.Create)
		sponsor.GET("/campaigns/my", h.Campaign.ListMine)
		sponsor.POST("/campaigns/:id/pause", middleware.UUIDValidator("id"), h.Campaign.Pause)
		sponsor.POST("/campaigns/:id/resume", middleware.UUIDValidator("id"), h.Campaign.Resume)
		sponsor.POST("/campaigns/:id/close", middleware.UUIDValidator("id"), h.Campaign.Close)
		sponsor.POST("/campaigns/:id/cover", middleware.UUIDValidator("id"), h.Campaign.UploadCover)
		sponsor.POST("/wallet/deposit", h.Wallet.Deposit)
	}

	// Публикации проверяет владелец кампании или администратор.
	reviewer := protected.Group("/")
	reviewer.Use(middleware.RequireRole(models.RoleSponsor, models.RoleAdmin))
	{
		reviewer.GET("/campaigns/:id/submissions", middleware.UUIDValidator("id"), h.Reservation.ListSubmissions)
		reviewer.POST("/submissions/:id/approve", middleware.UUIDValidator("id"), h.Reservation.ApproveSubmission)
		reviewer.POST("/submissions/:id/reject", middleware.UUIDValidator("id"), h.Reservation.RejectSubmission)
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/stats", h.Admin.Stats)

		admin.GET("/users", h.Admin.ListUsers)
		admin.PUT("/users/:id/active", middleware.UUIDValidator("id"), h.Admin.SetActive)
		admin.POST("/users/:id/instagram", middleware.UUIDValidator("id"), h.Admin.VerifyInstagram)

		admin.GET("/campaigns/pending", h.Admin.ListPendingCampaigns)
		admin.POST("/campaigns/:id/approve", middleware.UUIDValidator("id"), h.Admin.ApproveCampaign)
		admin.POST("/campaigns/:id/reject", middleware.UUIDValidator("id"), h.Admin.RejectCampaign)

		admin.GET("/withdrawals/pending", h.Admin.ListPendingWithdrawals)
		admin.POST("/withdrawals/:id/approve", middleware.UUIDValidator("id"), h.Admin.ApproveWithdrawal)
		admin.POST("/withdrawals/:id/reject", middleware.UUIDValidator("id"), h.Admin.RejectWithdrawal)

		admin.GET("/promo-codes", h.Admin.ListPromos)
		admin.POST("/promo-codes", h.Admin.CreatePromo)
		admin.DELETE("/promo-codes/:id", middleware.UUIDValidator("id"), h.Admin.DeactivatePromo)
	}

	return r
}
