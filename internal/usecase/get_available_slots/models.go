package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/pkg/types"
)

// Request модель запроса слотов на дату
type Request struct {
	Date time.Time          // Дата, на которую запрашиваются слоты
	Kind domain.ServiceKind // Вид услуги, влияет на вместимость слота
}

// SlotResponse один слот дневного расписания
type SlotResponse struct {
	StartTime       types.TimeString
	DurationMinutes int
	AvailableSpots  int
	TotalSpots      int
	Bookable        bool
	Reason          string // Причина недоступности, пустая для доступного слота
}

// Response слоты на дату
type Response struct {
	Date  time.Time
	Kind  string
	Slots []SlotResponse
}
