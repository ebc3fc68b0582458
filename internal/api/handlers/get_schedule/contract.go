package get_schedule

import (
	"context"

	"github.com/m04kA/SMC-LessonService/internal/service/bookings/models"
)

type BookingService interface {
	GetSchedule(ctx context.Context, req *models.GetScheduleRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
