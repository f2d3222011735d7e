package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ignatzorin/mingree-backend/internal/logger"
)

// Logger интерфейс для логирования ошибок
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// Recover - для defer в уже запущенных горутинах (читатели/писатели WebSocket, фоновые задачи).
// recover() должен вызываться прямо в отложенной функции, поэтому обе Recover вызывают его сами.
func (rh *RecoveryHandler) Recover(where string) {
	if r := recover(); r != nil {
		rh.report(where, r)
	}
}

func (rh *RecoveryHandler) report(where string, r interface{}) {
	rh.logger.Errorf("panic in %s: %v\nStack trace:\n%s", where, r, debug.Stack())
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(name string, fn func()) {
	go func() {
		defer rh.Recover(name)
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go func() {
		defer rh.Recover(name)
		fn(ctx)
	}()
}

// DefaultRecoveryHandler пишет паники в общий logrus логгер.
var DefaultRecoveryHandler = NewRecoveryHandler(logger.ErrorLogger())

// SafeGo - упрощенная функция для запуска безопасной горутины
func SafeGo(name string, fn func()) {
	DefaultRecoveryHandler.SafeGo(name, fn)
}

// SafeGoWithContext - упрощенная функция для запуска безопасной горутины с контекстом
func SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, name, fn)
}

// Recover - defer-хелпер на DefaultRecoveryHandler
func Recover(where string) {
	if r := recover(); r != nil {
		DefaultRecoveryHandler.report(where, r)
	}
}
