package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/mingree-backend/internal/config"
	"github.com/ignatzorin/mingree-backend/internal/db"
	httpHandlers "github.com/ignatzorin/mingree-backend/internal/http/handlers"
	"github.com/ignatzorin/mingree-backend/internal/http/middleware"
	httpRouter "github.com/ignatzorin/mingree-backend/internal/http/router"
	"github.com/ignatzorin/mingree-backend/internal/jobs"
	"github.com/ignatzorin/mingree-backend/internal/logger"
	"github.com/ignatzorin/mingree-backend/internal/repository"
	"github.com/ignatzorin/mingree-backend/internal/service"
	"github.com/ignatzorin/mingree-backend/internal/storage"
	"github.com/ignatzorin/mingree-backend/internal/ws"
	"github.com/ignatzorin/mingree-backend/migrations"
)

const cachePurgeInterval = time.Minute

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, migrations.FS); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Redis нужен только для общего хранилища rate limit.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("main: некорректный REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.L().WithError(err).Warn("main: ошибка закрытия redis")
			}
		}()
	}

	limitStore, err := middleware.NewLimiterStore(rdb)
	if err != nil {
		log.Fatalf("main: не удалось создать хранилище rate limit: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	imageStorage, err := storage.NewImageStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	campaignRepo := repository.NewCampaignRepository(dbConn)
	reservationRepo := repository.NewReservationRepository(dbConn)
	walletRepo := repository.NewWalletRepository(dbConn)
	withdrawalRepo := repository.NewWithdrawalRepository(dbConn)
	promoRepo := repository.NewPromoRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	categorySubRepo := repository.NewCategorySubscriptionRepository(dbConn)
	statsRepo := repository.NewStatsRepository(dbConn)

	// Вебсокеты: хаб сохраняет уведомление и доставляет его онлайн клиентам.
	notificationService := service.NewNotificationService(notificationRepo)
	hub := ws.NewHub(ctx)
	hub.SetNotificationSaver(ws.NewNotificationServiceAdapter(notificationService))

	// Сервисы.
	cache := service.NewCacheService()
	authService := service.NewAuthService(userRepo, tokenManager)
	profileService := service.NewProfileService(userRepo)
	campaignService := service.NewCampaignService(campaignRepo, userRepo, imageStorage, hub, cfg.Billing)
	reservationService := service.NewReservationService(reservationRepo, campaignRepo, userRepo, hub, cfg.Billing, cfg.Reservation.TTL)
	walletService := service.NewWalletService(walletRepo, campaignRepo, userRepo, hub, service.NewDepositReceipts(cfg.DepositSecret))
	withdrawalService := service.NewWithdrawalService(withdrawalRepo, userRepo, hub, cfg.Billing.MinWithdrawal)
	subscriptionService := service.NewSubscriptionService(promoRepo, userRepo, hub, cfg.Billing)
	categorySubService := service.NewCategorySubscriptionService(categorySubRepo, userRepo)
	adminService := service.NewAdminService(userRepo, statsRepo, campaignRepo, cache, hub)
	seedService := service.NewSeedService(userRepo, campaignService, walletService, adminService)

	if cfg.AdminEmail != "" {
		if _, err := seedService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("main: не удалось создать администратора: %v", err)
		}
	}

	var seedHandler *httpHandlers.SeedHandler
	if cfg.Env == "development" {
		seedHandler = httpHandlers.NewSeedHandler(seedService)
	}

	healthChecks := map[string]httpHandlers.Pinger{"database": dbConn}
	if rdb != nil {
		healthChecks["redis"] = httpHandlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Auth:                 httpHandlers.NewAuthHandler(authService),
		Profile:              httpHandlers.NewProfileHandler(profileService),
		Campaign:             httpHandlers.NewCampaignHandler(campaignService),
		Reservation:          httpHandlers.NewReservationHandler(reservationService),
		Wallet:               httpHandlers.NewWalletHandler(walletService),
		Withdrawal:           httpHandlers.NewWithdrawalHandler(withdrawalService),
		Subscription:         httpHandlers.NewSubscriptionHandler(subscriptionService),
		CategorySubscription: httpHandlers.NewCategorySubscriptionHandler(categorySubService),
		Notification:         httpHandlers.NewNotificationHandler(notificationService),
		Admin:                httpHandlers.NewAdminHandler(adminService, campaignService, withdrawalService, subscriptionService),
		Health:               httpHandlers.NewHealthHandler(healthChecks),
		WS:                   httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Seed:                 seedHandler,
	}, tokenManager, limitStore)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error {
		return jobs.NewReservationExpirer(reservationService, cfg.Reservation.SweepInterval, cfg.Reservation.SweepBatch).Run(gctx)
	})
	g.Go(func() error { return cache.Run(gctx, cachePurgeInterval) })

	g.Go(func() error {
		logger.L().WithField("port", cfg.HTTPPort).Info("main: HTTP сервер запущен")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Завершаем сервер при получении сигнала или падении любой из горутин.
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.L().WithError(err).Error("main: сервер завершился с ошибкой")
		return
	}
	logger.L().Info("main: сервер остановлен")
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
