package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// BookingRepository интерфейс репозитория занятий
type BookingRepository interface {
	GetActiveBySlot(ctx context.Context, lessonDate time.Time, startTime string) ([]*domain.Booking, error)
	GetActiveByDate(ctx context.Context, lessonDate time.Time) ([]*domain.Booking, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
