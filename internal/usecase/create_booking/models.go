package create_booking

import (
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/pkg/types"
)

// Request модель запроса на создание одиночного занятия
type Request struct {
	OwnerID     int64              // ID ученика
	ServiceKind domain.ServiceKind // Вид услуги (individual / group / exam_prep)
	Date        time.Time          // Дата занятия (без времени)
	StartTime   types.TimeString   // Время начала слота (например, "10:00")
	Amount      float64            // Стоимость занятия
	Currency    string             // Валюта (ISO 4217)
}

// Response модель ответа с созданным занятием
type Response struct {
	ID              int64
	OwnerID         int64
	ServiceKind     string
	LessonType      string
	LessonDate      time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          string
	PaymentStatus   string
	Amount          float64
	Currency        string

	// Дедлайн отмены: за 24 часа до начала, зафиксирован при создании
	CancellationDeadline time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
