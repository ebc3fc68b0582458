package run_payment_sweep

import (
	"context"

	paymentSweep "github.com/m04kA/SMC-LessonService/internal/usecase/payment_sweep"
)

type PaymentSweepUseCase interface {
	Execute(ctx context.Context) (*paymentSweep.Report, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
