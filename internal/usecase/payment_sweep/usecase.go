package payment_sweep

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-LessonService/internal/integrations/payprovider"
	"github.com/m04kA/SMC-LessonService/internal/service/availability"
)

// UseCase проход по платежам: списание оплаты за занятия, до начала которых
// осталось меньше 24 часов
type UseCase struct {
	bookingRepo  BookingRepository
	payClient    PaymentClient
	locker       Locker // nil - блокировка отключена
	metrics      MetricsRecorder
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый usecase прохода по платежам
func NewUseCase(
	bookingRepo BookingRepository,
	payClient PaymentClient,
	locker Locker,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		payClient:    payClient,
		locker:       locker,
		metrics:      metrics,
		timeProvider: &availability.RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет один проход по платежам
//
// Захват строк идемпотентен: UPDATE pending -> processing ... RETURNING
// отдает каждое занятие ровно одному проходу, поэтому параллельный запуск
// не приводит к двойному списанию. Исход каждого занятия:
//   - успех провайдера       -> paid
//   - отказ провайдера       -> payment_failed (занятие остается scheduled)
//   - неопределенный исход   -> возврат в pending, повтор на следующем проходе
//   - занятие отменено во время оплаты -> компенсирующий возврат списания
func (uc *UseCase) Execute(ctx context.Context) (*Report, error) {
	if uc.locker != nil {
		acquired, err := uc.locker.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: Execute - acquire lock: %v", ErrInternal, err)
		}
		if !acquired {
			uc.logger.Info("Execute: sweep skipped, lock is held by another instance")
			return nil, ErrLockHeld
		}
		defer func() {
			if err := uc.locker.Release(ctx); err != nil {
				uc.logger.Error("Execute: failed to release sweep lock: %v", err)
			}
		}()
	}

	now := uc.timeProvider.Now()

	claimed, err := uc.bookingRepo.ClaimDueForPayment(ctx, now)
	if err != nil {
		uc.logger.Error("Execute: failed to claim due bookings: %v", err)
		return nil, fmt.Errorf("%w: Execute - claim due bookings: %v", ErrInternal, err)
	}

	report := &Report{Claimed: len(claimed)}
	uc.metrics.AddSweepClaimed(len(claimed))

	if len(claimed) == 0 {
		return report, nil
	}

	uc.logger.Info("Execute: claimed %d bookings for payment", len(claimed))

	for _, booking := range claimed {
		uc.chargeOne(ctx, booking, report)
	}

	uc.logger.Info("Execute: sweep finished: claimed=%d paid=%d failed=%d released=%d reversed=%d",
		report.Claimed, report.Paid, report.Failed, report.Released, report.Reversed)
	return report, nil
}

// chargeOne списывает оплату за одно занятие и фиксирует исход
// Ошибка одного занятия не прерывает проход по остальным
func (uc *UseCase) chargeOne(ctx context.Context, booking *domain.Booking, report *Report) {
	payerRef := fmt.Sprintf("owner:%d", booking.OwnerID)

	providerRef, err := uc.payClient.Charge(ctx, booking.Amount, booking.Currency, payerRef)
	switch {
	case err == nil:
		if markErr := uc.bookingRepo.MarkPaid(ctx, booking.ID, providerRef); markErr != nil {
			if errors.Is(markErr, bookingRepo.ErrInvalidPaymentState) {
				// Занятие отменили между захватом и ответом провайдера:
				// оплаченным оно стать не должно, списание возвращается
				uc.reverseCharge(ctx, booking, providerRef, report)
				return
			}
			// Деньги списаны, статус не записался: строка остается processing
			// и не попадет под повторное списание - разбор вручную
			uc.logger.Error("chargeOne: charge succeeded but MarkPaid failed for booking id=%d: %v", booking.ID, markErr)
			uc.metrics.IncPayment("unresolved")
			return
		}
		uc.metrics.IncPayment("succeeded")
		report.Paid++

	case errors.Is(err, payprovider.ErrIndeterminate):
		// Исход неизвестен (таймаут, обрыв соединения) - возвращаем занятие
		// в pending, следующий проход повторит попытку
		uc.logger.Warn("chargeOne: charge outcome unknown for booking id=%d: %v", booking.ID, err)
		if relErr := uc.bookingRepo.ReleasePaymentClaim(ctx, booking.ID); relErr != nil {
			uc.logger.Error("chargeOne: failed to release claim for booking id=%d: %v", booking.ID, relErr)
			uc.metrics.IncPayment("unresolved")
			return
		}
		uc.metrics.IncPayment("indeterminate")
		report.Released++

	default:
		uc.logger.Warn("chargeOne: charge declined for booking id=%d: %v", booking.ID, err)
		if markErr := uc.bookingRepo.MarkPaymentFailed(ctx, booking.ID, err.Error()); markErr != nil {
			uc.logger.Error("chargeOne: failed to mark payment failed for booking id=%d: %v", booking.ID, markErr)
			uc.metrics.IncPayment("unresolved")
			return
		}
		uc.metrics.IncPayment("failed")
		report.Failed++
	}
}

// reverseCharge возвращает успешное списание за занятие, которое успели
// отменить во время обращения к провайдеру: деньги за отмененное занятие
// не удерживаются. Неуспех возврата отмечает строку refund_unresolved
// и уходит в ручной разбор
func (uc *UseCase) reverseCharge(ctx context.Context, booking *domain.Booking, providerRef string, report *Report) {
	uc.logger.Warn("reverseCharge: booking id=%d is no longer scheduled, refunding the charge", booking.ID)

	if _, err := uc.payClient.Refund(ctx, providerRef); err != nil {
		uc.logger.Error("reverseCharge: refund failed for booking id=%d: %v", booking.ID, err)
		if flagErr := uc.bookingRepo.FlagRefundUnresolved(ctx, booking.ID, providerRef); flagErr != nil {
			uc.logger.Error("reverseCharge: failed to flag booking id=%d for manual follow-up: %v", booking.ID, flagErr)
		}
		uc.metrics.IncPayment("unresolved")
		return
	}

	if err := uc.bookingRepo.MarkChargeReversed(ctx, booking.ID, providerRef); err != nil {
		uc.logger.Error("reverseCharge: refund succeeded but status update failed for booking id=%d: %v", booking.ID, err)
		uc.metrics.IncPayment("unresolved")
		return
	}

	uc.metrics.IncPayment("reversed")
	report.Reversed++
}
