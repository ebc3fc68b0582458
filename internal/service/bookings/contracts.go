package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// BookingRepository интерфейс репозитория занятий
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByOwnerID(ctx context.Context, ownerID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetSchedule(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Booking, error)
	MarkRefunded(ctx context.Context, id int64) error
	Cancel(ctx context.Context, id int64, reason string, refundUnresolved bool) error
}

// PaymentClient интерфейс клиента платежного провайдера
type PaymentClient interface {
	Refund(ctx context.Context, providerRef string) (string, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// MetricsRecorder интерфейс записи бизнес-метрик
type MetricsRecorder interface {
	IncRefund(result string)
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
