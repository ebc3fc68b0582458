package payment_sweep

import (
	"context"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// BookingRepository интерфейс репозитория занятий
type BookingRepository interface {
	// ClaimDueForPayment атомарно захватывает занятия, у которых наступил
	// момент оплаты, переводя их pending -> processing
	ClaimDueForPayment(ctx context.Context, now time.Time) ([]*domain.Booking, error)
	MarkPaid(ctx context.Context, id int64, providerRef string) error
	MarkPaymentFailed(ctx context.Context, id int64, reason string) error
	ReleasePaymentClaim(ctx context.Context, id int64) error
	MarkChargeReversed(ctx context.Context, id int64, providerRef string) error
	FlagRefundUnresolved(ctx context.Context, id int64, providerRef string) error
}

// PaymentClient интерфейс клиента платежного провайдера
type PaymentClient interface {
	Charge(ctx context.Context, amount float64, currency string, payerRef string) (string, error)
	Refund(ctx context.Context, providerRef string) (string, error)
}

// Locker распределенная блокировка прохода по платежам
// nil-блокировка означает один экземпляр сервиса - проход без координации
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// MetricsRecorder интерфейс записи бизнес-метрик
type MetricsRecorder interface {
	IncPayment(result string)
	AddSweepClaimed(n int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
