package availability

import (
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/pkg/types"
)

// Календарь слотов: чистые функции над недельным шаблоном
// Отвечают только на вопрос "существует ли такой слот в принципе";
// правило 24 часов и занятость проверяются уровнем выше

// IsCalendarSlot проверяет, что пара (дата, время) - слот недельного шаблона
// Дата подходит, если её день недели рабочий и дата не в прошлом
// (сегодняшний день на этом уровне допустим)
func IsCalendarSlot(schedule domain.WeeklySchedule, date time.Time, startTime types.TimeString, now time.Time) bool {
	if isDateInPast(date, now) {
		return false
	}

	if !schedule.IsOpenOn(date.Weekday()) {
		return false
	}

	for _, slot := range ListSlotsForDate(schedule, date, now) {
		if slot == startTime {
			return true
		}
	}

	return false
}

// ListSlotsForDate возвращает все слоты шаблона на дату по возрастанию
// Детерминированная функция без побочных эффектов; для неизвестной
// или прошедшей даты возвращает пустой список
func ListSlotsForDate(schedule domain.WeeklySchedule, date time.Time, now time.Time) []types.TimeString {
	if isDateInPast(date, now) {
		return []types.TimeString{}
	}

	if !schedule.IsOpenOn(date.Weekday()) {
		return []types.TimeString{}
	}

	slots := make([]types.TimeString, 0)
	current := schedule.DayStart

	for current.IsBefore(schedule.DayEnd) {
		slotEnd, err := current.AddMinutes(schedule.SlotDurationMinutes)
		if err != nil {
			break
		}
		if slotEnd.IsAfter(schedule.DayEnd) {
			break
		}

		slots = append(slots, current)

		current, err = current.AddMinutes(schedule.SlotDurationMinutes)
		if err != nil {
			break
		}
	}

	return slots
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	// Обнуляем время, чтобы сравнивать только даты
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
