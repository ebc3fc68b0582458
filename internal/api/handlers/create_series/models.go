package create_series

import (
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	createSeries "github.com/m04kA/SMC-LessonService/internal/usecase/create_series"
	"github.com/m04kA/SMC-LessonService/pkg/types"
)

// CreateSeriesRequest HTTP request model
type CreateSeriesRequest struct {
	ServiceKind     string  `json:"serviceKind"`
	AnchorDate      string  `json:"anchorDate"` // Дата первого занятия, "2025-10-15"
	StartTime       string  `json:"startTime"`  // "10:00"
	Occurrences     int     `json:"occurrences"`
	AmountPerLesson float64 `json:"amountPerLesson"`
	Currency        string  `json:"currency"`
}

// OccurrenceResponse одно занятие серии в HTTP ответе
type OccurrenceResponse struct {
	ID                   int64  `json:"id"`
	LessonDate           string `json:"lessonDate"`
	StartTime            string `json:"startTime"`
	Sequence             int    `json:"sequence"`
	Status               string `json:"status"`
	PaymentStatus        string `json:"paymentStatus"`
	CancellationDeadline string `json:"cancellationDeadline"`
}

// SeriesResponse HTTP response model
type SeriesResponse struct {
	SeriesID    string               `json:"seriesId"`
	OwnerID     int64                `json:"ownerId"`
	ServiceKind string               `json:"serviceKind"`
	Total       int                  `json:"total"`
	Occurrences []OccurrenceResponse `json:"occurrences"`
}

// UnavailableOccurrenceResponse тело ответа 409 с первым недоступным занятием серии
type UnavailableOccurrenceResponse struct {
	Error    string `json:"error"`
	Sequence int    `json:"sequence"`
	Date     string `json:"date"`
	Reason   string `json:"reason"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateSeriesRequest) ToUseCaseRequest(ownerID int64) (*createSeries.Request, error) {
	anchorDate, err := time.Parse(domain.DateFormat, r.AnchorDate)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createSeries.Request{
		OwnerID:         ownerID,
		ServiceKind:     domain.ServiceKind(r.ServiceKind),
		AnchorDate:      anchorDate,
		StartTime:       startTime,
		Occurrences:     r.Occurrences,
		AmountPerLesson: r.AmountPerLesson,
		Currency:        r.Currency,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createSeries.Response) *SeriesResponse {
	occurrences := make([]OccurrenceResponse, 0, len(resp.Occurrences))
	for _, o := range resp.Occurrences {
		occurrences = append(occurrences, OccurrenceResponse{
			ID:                   o.ID,
			LessonDate:           o.LessonDate.Format(domain.DateFormat),
			StartTime:            o.StartTime.String(),
			Sequence:             o.Sequence,
			Status:               o.Status,
			PaymentStatus:        o.PaymentStatus,
			CancellationDeadline: o.CancellationDeadline.Format(time.RFC3339),
		})
	}

	return &SeriesResponse{
		SeriesID:    resp.SeriesID,
		OwnerID:     resp.OwnerID,
		ServiceKind: resp.ServiceKind,
		Total:       resp.Total,
		Occurrences: occurrences,
	}
}
