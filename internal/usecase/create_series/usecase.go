package create_series

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-LessonService/internal/service/availability"
	"github.com/m04kA/SMC-LessonService/pkg/ptr"
)

// UseCase создание серии еженедельных занятий
type UseCase struct {
	bookingRepo BookingRepository
	checker     AvailabilityChecker
	txManager   TransactionManager
	metrics     MetricsRecorder
	logger      Logger
}

// NewUseCase создает новый usecase создания серии
func NewUseCase(
	bookingRepo BookingRepository,
	checker AvailabilityChecker,
	txManager TransactionManager,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		checker:     checker,
		txManager:   txManager,
		metrics:     metrics,
		logger:      logger,
	}
}

// Execute создает серию занятий: каждую неделю в тот же день и время,
// начиная с якорной даты
//
// Серия создается только целиком. Все проверки доступности и вставка всех
// строк выполняются в одной сериализуемой транзакции: первое недоступное
// занятие откатывает серию с указанием даты и причины
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("Execute: creating series for owner=%d, kind=%s, anchor=%s, time=%s, occurrences=%d",
		req.OwnerID, req.ServiceKind, req.AnchorDate.Format(domain.DateFormat), req.StartTime, req.Occurrences)

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.checker.Rules()); err != nil {
		uc.logger.Warn("Execute: validation failed for owner=%d: %v", req.OwnerID, err)
		return nil, err
	}

	dates := expandDates(req.AnchorDate, req.Occurrences)
	seriesID := uuid.NewString()

	var created []*domain.Booking

	// 2. Проверка всех дат и вставка всей серии атомарно
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		for i, date := range dates {
			reason, err := uc.checker.Check(txCtx, date, req.StartTime, req.ServiceKind)
			if err != nil {
				return fmt.Errorf("%w: Execute - availability check for %s: %v",
					ErrInternal, date.Format(domain.DateFormat), err)
			}
			if reason != availability.ReasonNone {
				return &OccurrenceUnavailableError{Sequence: i + 1, Date: date, Reason: reason}
			}
		}

		bookings := uc.buildSeries(req, dates, seriesID)

		var err error
		created, err = uc.bookingRepo.CreateSeries(txCtx, bookings)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotTaken) {
				return ErrSlotConflict
			}
			return fmt.Errorf("%w: Execute - create series: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		uc.logger.Warn("Execute: series creation failed for owner=%d: %v", req.OwnerID, err)
		return nil, err
	}

	for range created {
		uc.metrics.IncBookingCreated(string(domain.TypeRecurring))
	}
	uc.logger.Info("Execute: successfully created series=%s with %d bookings for owner=%d",
		seriesID, len(created), req.OwnerID)

	return toResponse(seriesID, req, created), nil
}

// expandDates разворачивает якорную дату в даты занятий с шагом в неделю
// День недели у всех дат совпадает по построению
func expandDates(anchor time.Time, occurrences int) []time.Time {
	dates := make([]time.Time, 0, occurrences)
	for i := 0; i < occurrences; i++ {
		dates = append(dates, anchor.AddDate(0, 0, 7*i))
	}
	return dates
}

// buildSeries собирает доменные модели всех занятий серии
func (uc *UseCase) buildSeries(req *Request, dates []time.Time, seriesID string) []*domain.Booking {
	schedule := uc.checker.Schedule()
	rules := uc.checker.Rules()

	bookings := make([]*domain.Booking, 0, len(dates))
	for i, date := range dates {
		bookings = append(bookings, &domain.Booking{
			OwnerID:              req.OwnerID,
			ServiceKind:          req.ServiceKind,
			LessonType:           domain.TypeRecurring,
			LessonDate:           date,
			StartTime:            req.StartTime,
			Weekday:              date.Weekday(),
			DurationMinutes:      schedule.SlotDurationMinutes,
			Status:               domain.StatusScheduled,
			PaymentStatus:        domain.PaymentPending,
			Amount:               req.AmountPerLesson,
			Currency:             req.Currency,
			SeriesID:             ptr.Ptr(seriesID),
			SeriesSequence:       ptr.Ptr(i + 1),
			SeriesTotal:          ptr.Ptr(len(dates)),
			CancellationDeadline: domain.NewCancellationDeadline(date, req.StartTime, rules.NoticeHours),
		})
	}
	return bookings
}

func toResponse(seriesID string, req *Request, created []*domain.Booking) *Response {
	occurrences := make([]OccurrenceResponse, 0, len(created))
	for _, b := range created {
		seq := 0
		if b.SeriesSequence != nil {
			seq = *b.SeriesSequence
		}
		occurrences = append(occurrences, OccurrenceResponse{
			ID:                   b.ID,
			LessonDate:           b.LessonDate,
			StartTime:            b.StartTime,
			Sequence:             seq,
			Status:               string(b.Status),
			PaymentStatus:        string(b.PaymentStatus),
			CancellationDeadline: b.CancellationDeadline,
		})
	}

	return &Response{
		SeriesID:    seriesID,
		OwnerID:     req.OwnerID,
		ServiceKind: string(req.ServiceKind),
		Total:       len(created),
		Occurrences: occurrences,
	}
}
