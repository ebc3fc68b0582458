package get_schedule_config

import (
	"net/http"
	"strings"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
)

// ScheduleConfigResponse HTTP response model
type ScheduleConfigResponse struct {
	OpenWeekdays         []string `json:"openWeekdays"`
	DayStart             string   `json:"dayStart"`
	DayEnd               string   `json:"dayEnd"`
	SlotDurationMinutes  int      `json:"slotDurationMinutes"`
	NoticeHours          int      `json:"noticeHours"`
	GroupCapacity        int      `json:"groupCapacity"`
	MaxSeriesOccurrences int      `json:"maxSeriesOccurrences"`
}

type Handler struct {
	provider ScheduleProvider
	logger   Logger
}

func NewHandler(provider ScheduleProvider, logger Logger) *Handler {
	return &Handler{
		provider: provider,
		logger:   logger,
	}
}

// Handle GET /api/v1/schedule/config
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	schedule := h.provider.Schedule()
	rules := h.provider.Rules()

	// Дни недели отдаем в привычном порядке: понедельник - воскресенье
	weekdayOrder := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}

	openWeekdays := make([]string, 0, len(weekdayOrder))
	for _, day := range weekdayOrder {
		if schedule.OpenWeekdays[day] {
			openWeekdays = append(openWeekdays, strings.ToLower(day.String()))
		}
	}

	response := ScheduleConfigResponse{
		OpenWeekdays:         openWeekdays,
		DayStart:             schedule.DayStart.String(),
		DayEnd:               schedule.DayEnd.String(),
		SlotDurationMinutes:  schedule.SlotDurationMinutes,
		NoticeHours:          rules.NoticeHours,
		GroupCapacity:        rules.GroupCapacity,
		MaxSeriesOccurrences: rules.MaxSeriesOccurrences,
	}

	h.logger.Info("GET /schedule/config - Config retrieved")
	handlers.RespondJSON(w, http.StatusOK, response)
}
