package create_series

import (
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/pkg/types"
)

// Request модель запроса на создание серии еженедельных занятий
type Request struct {
	OwnerID         int64              // ID ученика
	ServiceKind     domain.ServiceKind // Вид услуги (individual / group / exam_prep)
	AnchorDate      time.Time          // Дата первого занятия серии
	StartTime       types.TimeString   // Время начала (общее для всех занятий)
	Occurrences     int                // Количество занятий в серии
	AmountPerLesson float64            // Стоимость одного занятия
	Currency        string             // Валюта (ISO 4217)
}

// OccurrenceResponse одно занятие созданной серии
type OccurrenceResponse struct {
	ID                   int64
	LessonDate           time.Time
	StartTime            types.TimeString
	Sequence             int
	Status               string
	PaymentStatus        string
	CancellationDeadline time.Time
}

// Response модель ответа с созданной серией
type Response struct {
	SeriesID    string
	OwnerID     int64
	ServiceKind string
	Total       int
	Occurrences []OccurrenceResponse
}
