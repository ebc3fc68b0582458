package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-LessonService/internal/service/availability"
)

// UseCase создание одиночного занятия
// Проверку времени (правило 24 часов) целиком выполняет AvailabilityChecker
type UseCase struct {
	bookingRepo BookingRepository
	checker     AvailabilityChecker
	txManager   TransactionManager
	metrics     MetricsRecorder
	logger      Logger
}

// NewUseCase создает новый usecase создания занятия
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

// Execute создает занятие в выбранном слоте
//
// Проверка доступности и вставка выполняются в одной сериализуемой транзакции,
// чтобы конкурирующие запросы на один слот не прошли проверку одновременно.
// Частичный уникальный индекс по (дата, время) для активных индивидуальных
// занятий - вторая линия обороны: гонка, пережившая транзакцию, упирается
// в 23505 и возвращается как ErrSlotConflict
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("Execute: creating booking for owner=%d, kind=%s, date=%s, time=%s",
		req.OwnerID, req.ServiceKind, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("Execute: validation failed for owner=%d: %v", req.OwnerID, err)
		return nil, err
	}

	var created *domain.Booking

	// 2. Проверка доступности и вставка атомарно
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		reason, err := uc.checker.Check(txCtx, req.Date, req.StartTime, req.ServiceKind)
		if err != nil {
			return fmt.Errorf("%w: Execute - availability check: %v", ErrInternal, err)
		}
		if reason != availability.ReasonNone {
			return reasonToError(reason)
		}

		booking := uc.buildBooking(req)

		created, err = uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotTaken) {
				return ErrSlotConflict
			}
			return fmt.Errorf("%w: Execute - create booking: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		uc.logger.Warn("Execute: booking creation failed for owner=%d: %v", req.OwnerID, err)
		return nil, err
	}

	uc.metrics.IncBookingCreated(string(created.LessonType))
	uc.logger.Info("Execute: successfully created booking id=%d for owner=%d", created.ID, created.OwnerID)

	return toResponse(created), nil
}

// buildBooking собирает доменную модель занятия из запроса
// Дедлайн отмены вычисляется один раз и фиксируется в строке
func (uc *UseCase) buildBooking(req *Request) *domain.Booking {
	schedule := uc.checker.Schedule()
	rules := uc.checker.Rules()

	return &domain.Booking{
		OwnerID:              req.OwnerID,
		ServiceKind:          req.ServiceKind,
		LessonType:           lessonTypeFor(req.ServiceKind),
		LessonDate:           req.Date,
		StartTime:            req.StartTime,
		Weekday:              req.Date.Weekday(),
		DurationMinutes:      schedule.SlotDurationMinutes,
		Status:               domain.StatusScheduled,
		PaymentStatus:        domain.PaymentPending,
		Amount:               req.Amount,
		Currency:             req.Currency,
		CancellationDeadline: domain.NewCancellationDeadline(req.Date, req.StartTime, rules.NoticeHours),
	}
}

func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:                   b.ID,
		OwnerID:              b.OwnerID,
		ServiceKind:          string(b.ServiceKind),
		LessonType:           string(b.LessonType),
		LessonDate:           b.LessonDate,
		StartTime:            b.StartTime,
		DurationMinutes:      b.DurationMinutes,
		Status:               string(b.Status),
		PaymentStatus:        string(b.PaymentStatus),
		Amount:               b.Amount,
		Currency:             b.Currency,
		CancellationDeadline: b.CancellationDeadline,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}
