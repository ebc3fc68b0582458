package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/service/availability"
)

// AvailabilityChecker единственный источник истины о доступности слотов
type AvailabilityChecker interface {
	DayOverview(ctx context.Context, date time.Time, kind domain.ServiceKind) ([]availability.SlotStatus, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
