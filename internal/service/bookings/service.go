package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-LessonService/internal/integrations/payprovider"
	"github.com/m04kA/SMC-LessonService/internal/service/bookings/models"
)

// Service сервис для работы с занятиями: чтение и отмена
type Service struct {
	bookingRepo  BookingRepository
	payClient    PaymentClient
	timeProvider TimeProvider
	metrics      MetricsRecorder
	logger       Logger
}

// NewService создает новый экземпляр сервиса занятий
func NewService(
	bookingRepo BookingRepository,
	payClient PaymentClient,
	metrics MetricsRecorder,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		payClient:    payClient,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
	}
}

// GetByID получает занятие по ID
// Ученик видит только свои занятия; админ/репетитор - любые
func (s *Service) GetByID(ctx context.Context, id int64, requesterID int64, role domain.Role) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, requesterID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if booking.OwnerID != requesterID && !role.CanManageSchedule() {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", requesterID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю занятий пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for owner=%d, status=%v", req.OwnerID, req.Status)

	if req.OwnerID != req.RequesterID && !req.Role.CanManageSchedule() {
		s.logger.Warn("GetUserBookings: access denied for user=%d to bookings of owner=%d", req.RequesterID, req.OwnerID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, ok := domain.ValidBookingStatus(*req.Status)
		if !ok {
			s.logger.Warn("GetUserBookings: invalid status=%s for owner=%d", *req.Status, req.OwnerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByOwnerID(ctx, req.OwnerID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for owner=%d: %v", req.OwnerID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for owner=%d", len(bookings), req.OwnerID)
	return models.FromDomainBookingList(bookings), nil
}

// GetSchedule получает расписание за период (включая отмененные по флагу)
// Доступно только админам и репетиторам
func (s *Service) GetSchedule(ctx context.Context, req *models.GetScheduleRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetSchedule: fetching schedule for user=%d, role=%s", req.RequesterID, req.Role)

	if !req.Role.CanManageSchedule() {
		s.logger.Warn("GetSchedule: access denied for user=%d with role=%s", req.RequesterID, req.Role)
		return nil, ErrAccessDenied
	}

	filter, ok := req.ToDomainFilter()
	if !ok {
		s.logger.Warn("GetSchedule: invalid status filter=%v", req.Status)
		return nil, fmt.Errorf("%w: invalid status filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetSchedule(ctx, filter)
	if err != nil {
		s.logger.Error("GetSchedule: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetSchedule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetSchedule: successfully fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет занятие и решает вопрос возврата оплаты
//
// Два пути:
// - ученик отменяет свое занятие: возврат положен, только если до начала
//   занятия больше 24 часов (now < cancellation_deadline) и оплата уже прошла;
//   внутри 24-часового окна занятие отменяется, но оплата сгорает
// - админ/репетитор отменяет любое занятие: если оплата прошла, возврат
//   делается независимо от дедлайна - снятие занятия платформой внутри
//   платежного окна считается виной платформы, а не клиента
//
// Порядок необратим: сначала попытка возврата, смена статуса - последним шагом.
// Сбой провайдера возврата отмену не блокирует: строка помечается
// refund_unresolved и уходит в ручной разбор
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.CancelResult, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d role=%s", bookingID, req.RequesterID, req.Role)

	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		s.logger.Warn("Cancel: cancellation reason is too long for booking id=%d", bookingID)
		return nil, fmt.Errorf("%w: cancellation reason exceeds %d characters",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	adminPath := req.Role.CanManageSchedule()
	if !adminPath && booking.OwnerID != req.RequesterID {
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.RequesterID, bookingID)
		return nil, ErrAccessDenied
	}

	if booking.IsCancelled() {
		s.logger.Warn("Cancel: booking id=%d is already cancelled", bookingID)
		return nil, ErrAlreadyCancelled
	}

	now := s.timeProvider.Now()

	refundOwed := booking.PaymentStatus == domain.PaymentPaid &&
		(adminPath || booking.RefundableAt(now))

	result := &models.CancelResult{}

	if refundOwed {
		result.Refunded, result.RefundUnresolved = s.tryRefund(ctx, booking)
	} else if booking.PaymentStatus == domain.PaymentPaid {
		s.logger.Info("Cancel: booking id=%d cancelled inside the 24h window, payment forfeited", bookingID)
	}

	// Статус меняется последним: упади мы между возвратом и отменой,
	// занятие осталось бы scheduled и слот - заблокированным, что чинится
	// повторной отменой; обратный порядок оставил бы "оплаченную дыру"
	if err := s.bookingRepo.Cancel(ctx, bookingID, req.CancellationReason, result.RefundUnresolved); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			// Конкурирующая отмена успела первой
			return nil, ErrAlreadyCancelled
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d (refunded=%v, unresolved=%v)",
		bookingID, result.Refunded, result.RefundUnresolved)
	return result, nil
}

// tryRefund пытается вернуть оплату занятия
// Возвращает (refunded, unresolved): неуспех провайдера не прерывает отмену
func (s *Service) tryRefund(ctx context.Context, booking *domain.Booking) (refunded bool, unresolved bool) {
	if booking.PaymentProviderRef == nil {
		s.logger.Error("tryRefund: booking id=%d is paid but has no provider ref", booking.ID)
		return false, true
	}

	if _, err := s.payClient.Refund(ctx, *booking.PaymentProviderRef); err != nil {
		if errors.Is(err, payprovider.ErrIndeterminate) {
			s.logger.Error("tryRefund: refund outcome unknown for booking id=%d: %v", booking.ID, err)
			s.metrics.IncRefund("indeterminate")
		} else {
			s.logger.Error("tryRefund: refund failed for booking id=%d: %v", booking.ID, err)
			s.metrics.IncRefund("failed")
		}
		return false, true
	}

	if err := s.bookingRepo.MarkRefunded(ctx, booking.ID); err != nil {
		// Деньги вернулись, а статус не записался - в ручной разбор
		s.logger.Error("tryRefund: refund succeeded but status update failed for booking id=%d: %v", booking.ID, err)
		s.metrics.IncRefund("succeeded")
		return true, true
	}

	s.metrics.IncRefund("succeeded")
	return true, false
}
