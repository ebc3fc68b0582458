package models

import (
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// Request модели

// CancelBookingRequest запрос на отмену занятия
type CancelBookingRequest struct {
	RequesterID        int64       `json:"requesterId"`
	Role               domain.Role `json:"role"`
	CancellationReason string      `json:"cancellationReason"`
}

// GetUserBookingsRequest запрос на получение занятий пользователя
type GetUserBookingsRequest struct {
	OwnerID     int64   `json:"ownerId"`
	RequesterID int64   `json:"requesterId"`
	Role        domain.Role
	Status      *string `json:"status,omitempty"`
}

// GetScheduleRequest запрос на получение расписания (админ/репетитор)
type GetScheduleRequest struct {
	RequesterID     int64
	Role            domain.Role
	StartDate       *time.Time
	EndDate         *time.Time
	Status          *string
	IncludeInactive bool
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetScheduleRequest) ToDomainFilter() (domain.ScheduleFilter, bool) {
	filter := domain.ScheduleFilter{
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, ok := domain.ValidBookingStatus(*r.Status)
		if !ok {
			return filter, false
		}
		filter.Status = &status
	}

	return filter, true
}

// Response модели

// CancelResult итог отмены занятия
// RefundUnresolved выставляется, когда возврат положен, но провайдер не ответил
// или отказал - отмена при этом все равно проходит
type CancelResult struct {
	Refunded         bool `json:"refunded"`
	RefundUnresolved bool `json:"refundUnresolved,omitempty"`
}

// BookingResponse ответ с данными занятия
type BookingResponse struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"ownerId"`
	ServiceKind string `json:"serviceKind"`
	LessonType  string `json:"lessonType"`

	LessonDate      string `json:"lessonDate"` // "2025-01-20"
	StartTime       string `json:"startTime"`  // "10:00"
	Weekday         string `json:"weekday"`
	DurationMinutes int    `json:"durationMinutes"`

	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`

	SeriesID       *string `json:"seriesId,omitempty"`
	SeriesSequence *int    `json:"seriesSequence,omitempty"`
	SeriesTotal    *int    `json:"seriesTotal,omitempty"`

	CancellationDeadline string  `json:"cancellationDeadline"` // ISO 8601
	CancellationReason   *string `json:"cancellationReason,omitempty"`
	CancelledAt          *string `json:"cancelledAt,omitempty"`
	RefundUnresolved     bool    `json:"refundUnresolved,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком занятий
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                   b.ID,
		OwnerID:              b.OwnerID,
		ServiceKind:          string(b.ServiceKind),
		LessonType:           string(b.LessonType),
		LessonDate:           b.LessonDate.Format(domain.DateFormat),
		StartTime:            b.StartTime.String(),
		Weekday:              b.Weekday.String(),
		DurationMinutes:      b.DurationMinutes,
		Status:               string(b.Status),
		PaymentStatus:        string(b.PaymentStatus),
		Amount:               b.Amount,
		Currency:             b.Currency,
		SeriesID:             b.SeriesID,
		SeriesSequence:       b.SeriesSequence,
		SeriesTotal:          b.SeriesTotal,
		CancellationDeadline: b.CancellationDeadline.Format(time.RFC3339),
		CancellationReason:   b.CancellationReason,
		RefundUnresolved:     b.RefundUnresolved,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}

	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}
