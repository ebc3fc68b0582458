package create_booking

import (
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	createBooking "github.com/m04kA/SMC-LessonService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-LessonService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceKind string  `json:"serviceKind"` // "individual" / "group" / "exam_prep"
	LessonDate  string  `json:"lessonDate"`  // "2025-10-15"
	StartTime   string  `json:"startTime"`   // "10:00"
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID                   int64   `json:"id"`
	OwnerID              int64   `json:"ownerId"`
	ServiceKind          string  `json:"serviceKind"`
	LessonType           string  `json:"lessonType"`
	LessonDate           string  `json:"lessonDate"`
	StartTime            string  `json:"startTime"`
	DurationMinutes      int     `json:"durationMinutes"`
	Status               string  `json:"status"`
	PaymentStatus        string  `json:"paymentStatus"`
	Amount               float64 `json:"amount"`
	Currency             string  `json:"currency"`
	CancellationDeadline string  `json:"cancellationDeadline"`
	CreatedAt            string  `json:"createdAt"`
	UpdatedAt            string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(ownerID int64) (*createBooking.Request, error) {
	// Парсим дату
	lessonDate, err := time.Parse(domain.DateFormat, r.LessonDate)
	if err != nil {
		return nil, err
	}

	// Парсим время
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		OwnerID:     ownerID,
		ServiceKind: domain.ServiceKind(r.ServiceKind),
		Date:        lessonDate,
		StartTime:   startTime,
		Amount:      r.Amount,
		Currency:    r.Currency,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:                   resp.ID,
		OwnerID:              resp.OwnerID,
		ServiceKind:          resp.ServiceKind,
		LessonType:           resp.LessonType,
		LessonDate:           resp.LessonDate.Format(domain.DateFormat),
		StartTime:            resp.StartTime.String(),
		DurationMinutes:      resp.DurationMinutes,
		Status:               resp.Status,
		PaymentStatus:        resp.PaymentStatus,
		Amount:               resp.Amount,
		Currency:             resp.Currency,
		CancellationDeadline: resp.CancellationDeadline.Format(time.RFC3339),
		CreatedAt:            resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            resp.UpdatedAt.Format(time.RFC3339),
	}
}
