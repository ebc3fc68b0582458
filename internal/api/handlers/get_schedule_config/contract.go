package get_schedule_config

import (
	"github.com/m04kA/SMC-LessonService/internal/domain"
)

type ScheduleProvider interface {
	Schedule() domain.WeeklySchedule
	Rules() domain.BookingRules
}

type Logger interface {
	Info(format string, v ...interface{})
}
