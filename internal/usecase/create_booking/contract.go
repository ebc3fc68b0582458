package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/service/availability"
	"github.com/m04kA/SMC-LessonService/pkg/types"
)

// BookingRepository интерфейс репозитория занятий
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// AvailabilityChecker единственный источник истины о доступности слотов
type AvailabilityChecker interface {
	Check(ctx context.Context, date time.Time, startTime types.TimeString, kind domain.ServiceKind) (availability.Reason, error)
	Schedule() domain.WeeklySchedule
	Rules() domain.BookingRules
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder интерфейс записи бизнес-метрик
type MetricsRecorder interface {
	IncBookingCreated(lessonType string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
