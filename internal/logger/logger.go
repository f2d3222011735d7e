package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// JSON для production, text включается через SetTextFormatter
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// L возвращает логгер, даже если Init ещё не вызывался (тесты, утилиты).
func L() logrus.FieldLogger {
	if Log != nil {
		return Log
	}
	return logrus.StandardLogger()
}

// Discard отключает вывод, удобно в тестах.
func Discard() {
	Log = logrus.New()
	Log.SetOutput(io.Discard)
}

// Errorf нужен для goroutine.Logger.
type errorfAdapter struct{}

func (errorfAdapter) Errorf(format string, args ...interface{}) {
	L().Errorf(format, args...)
}

// ErrorLogger возвращает адаптер с методом Errorf поверх текущего логгера.
func ErrorLogger() interface {
	Errorf(format string, args ...interface{})
} {
	return errorfAdapter{}
}
