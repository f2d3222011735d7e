package jobs

import (
	"context"
	"time"

	"github.com/ignatzorin/mingree-backend/internal/logger"
	"github.com/ignatzorin/mingree-backend/internal/models"
)

const (
	defaultSweepInterval = 5 * time.Minute
	defaultSweepBatch    = 100
)

// ReservationSweeper переводит просроченные брони в expired.
type ReservationSweeper interface {
	ExpireOverdue(ctx context.Context, after *models.OverdueCursor, batch int) (models.SweepResult, error)
}

// ReservationExpirer - фоновая проверка броней с истёкшим сроком.
// Ленивое истечение при чтении остаётся основным механизмом, задача лишь
// освобождает места в кампаниях, которые никто не открывает.
type ReservationExpirer struct {
	sweeper  ReservationSweeper
	interval time.Duration
	batch    int
}

// NewReservationExpirer создаёт задачу. Неположительные interval и batch заменяются значениями по умолчанию.
func NewReservationExpirer(sweeper ReservationSweeper, interval time.Duration, batch int) *ReservationExpirer {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if batch <= 0 {
		batch = defaultSweepBatch
	}
	return &ReservationExpirer{
		sweeper:  sweeper,
		interval: interval,
		batch:    batch,
	}
}

// Run крутит цикл до отмены ctx. Первый проход выполняется сразу.
func (e *ReservationExpirer) Run(ctx context.Context) error {
	log := logger.L().WithField("job", "reservation_expirer")
	log.WithField("interval", e.interval.String()).Info("reservation expirer: запуск")

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		e.sweep(ctx)

		select {
		case <-ctx.Done():
			log.Info("reservation expirer: остановка")
			return nil
		case <-ticker.C:
		}
	}
}

// sweep проходит просроченные брони пачками по курсору, пока пачка заполнена целиком.
// Брони, которые не удалось истечь, остаются позади курсора до следующего прохода.
func (e *ReservationExpirer) sweep(ctx context.Context) {
	var (
		cursor  *models.OverdueCursor
		expired int
		scanned int
	)
	for ctx.Err() == nil {
		res, err := e.sweeper.ExpireOverdue(ctx, cursor, e.batch)
		if err != nil {
			logger.L().WithError(err).Error("reservation expirer: ошибка проверки броней")
			break
		}
		expired += res.Expired
		scanned += res.Scanned
		if res.Scanned < e.batch || res.Next == nil {
			break
		}
		cursor = res.Next
	}

	if scanned > 0 {
		logger.L().WithFields(map[string]interface{}{
			"expired": expired,
			"skipped": scanned - expired,
		}).Info("reservation expirer: проход завершён")
	}
}
