package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/usecase/payment_sweep"
)

// PaymentSweeper интерфейс прохода по платежам
type PaymentSweeper interface {
	Execute(ctx context.Context) (*payment_sweep.Report, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Scheduler периодически запускает проход по платежам
type Scheduler struct {
	sweeper  PaymentSweeper
	interval time.Duration
	logger   Logger
}

// New создает новый планировщик проходов по платежам
func New(sweeper PaymentSweeper, interval time.Duration, logger Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Start запускает цикл планировщика, блокируется до отмены контекста
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Scheduler: started with interval=%s", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler: stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	report, err := s.sweeper.Execute(ctx)
	if err != nil {
		if errors.Is(err, payment_sweep.ErrLockHeld) {
			// Другой экземпляр уже делает проход - не ошибка
			return
		}
		s.logger.Error("Scheduler: payment sweep failed: %v", err)
		return
	}

	if report.Claimed > 0 {
		s.logger.Info("Scheduler: payment sweep done: claimed=%d paid=%d failed=%d released=%d",
			report.Claimed, report.Paid, report.Failed, report.Released)
	}
}
