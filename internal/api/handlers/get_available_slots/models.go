package get_available_slots

import (
	"github.com/m04kA/SMC-LessonService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-LessonService/internal/usecase/get_available_slots"
)

// SlotResponse один слот в HTTP ответе
type SlotResponse struct {
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	AvailableSpots  int    `json:"availableSpots"`
	TotalSpots      int    `json:"totalSpots"`
	Bookable        bool   `json:"bookable"`
	Reason          string `json:"reason,omitempty"`
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date        string         `json:"date"`
	ServiceKind string         `json:"serviceKind"`
	Slots       []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime:       s.StartTime.String(),
			DurationMinutes: s.DurationMinutes,
			AvailableSpots:  s.AvailableSpots,
			TotalSpots:      s.TotalSpots,
			Bookable:        s.Bookable,
			Reason:          s.Reason,
		})
	}

	return &AvailableSlotsResponse{
		Date:        resp.Date.Format(domain.DateFormat),
		ServiceKind: resp.Kind,
		Slots:       slots,
	}
}
