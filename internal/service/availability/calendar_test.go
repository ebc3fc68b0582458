package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/pkg/types"
)

func testSchedule() domain.WeeklySchedule {
	return domain.WeeklySchedule{
		OpenWeekdays: map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
			time.Saturday:  true,
		},
		DayStart:            "09:00",
		DayEnd:              "20:00",
		SlotDurationMinutes: 60,
	}
}

func TestListSlotsForDate(t *testing.T) {
	schedule := testSchedule()
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC) // пятница

	t.Run("open day produces full grid", func(t *testing.T) {
		tuesday := time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)

		slots := ListSlotsForDate(schedule, tuesday, now)

		// 09:00 - 20:00 по 60 минут: 11 слотов, последний начинается в 19:00
		assert.Len(t, slots, 11)
		assert.Equal(t, types.TimeString("09:00"), slots[0])
		assert.Equal(t, types.TimeString("19:00"), slots[len(slots)-1])
	})

	t.Run("closed day is empty", func(t *testing.T) {
		sunday := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)

		assert.Empty(t, ListSlotsForDate(schedule, sunday, now))
	})

	t.Run("past date is empty", func(t *testing.T) {
		yesterday := time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)

		assert.Empty(t, ListSlotsForDate(schedule, yesterday, now))
	})

	t.Run("today is not past", func(t *testing.T) {
		today := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

		assert.Len(t, ListSlotsForDate(schedule, today, now), 11)
	})

	t.Run("slot not fitting before day end is dropped", func(t *testing.T) {
		short := testSchedule()
		short.DayEnd = "19:30"

		slots := ListSlotsForDate(short, time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC), now)

		// Слот 19:00-20:00 не влезает до 19:30
		assert.Equal(t, types.TimeString("18:00"), slots[len(slots)-1])
	})
}

func TestIsCalendarSlot(t *testing.T) {
	schedule := testSchedule()
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	tuesday := time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		date      time.Time
		startTime types.TimeString
		want      bool
	}{
		{name: "grid slot on open day", date: tuesday, startTime: "14:00", want: true},
		{name: "first slot", date: tuesday, startTime: "09:00", want: true},
		{name: "last slot", date: tuesday, startTime: "19:00", want: true},
		{name: "off-grid time", date: tuesday, startTime: "14:30", want: false},
		{name: "before opening", date: tuesday, startTime: "08:00", want: false},
		{name: "at closing", date: tuesday, startTime: "20:00", want: false},
		{name: "closed sunday", date: time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC), startTime: "14:00", want: false},
		{name: "past date", date: time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC), startTime: "14:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCalendarSlot(schedule, tt.date, tt.startTime, now))
		})
	}
}
