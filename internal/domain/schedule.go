package domain

import (
	"time"

	"github.com/m04kA/SMC-LessonService/pkg/types"
)

// WeeklySchedule недельный шаблон расписания
// Определяет, в какие дни недели и в какие часы вообще существуют слоты
type WeeklySchedule struct {
	OpenWeekdays        map[time.Weekday]bool
	DayStart            types.TimeString
	DayEnd              types.TimeString
	SlotDurationMinutes int
}

// IsOpenOn возвращает true, если в этот день недели есть занятия
func (s WeeklySchedule) IsOpenOn(weekday time.Weekday) bool {
	return s.OpenWeekdays[weekday]
}

// BookingRules правила записи
type BookingRules struct {
	// Минимальный интервал между записью и началом занятия
	NoticeHours int
	// Максимум учеников в одном групповом слоте
	GroupCapacity int
	// Максимальная длина еженедельной серии
	MaxSeriesOccurrences int
}
