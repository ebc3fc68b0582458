package run_payment_sweep

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	paymentSweep "github.com/m04kA/SMC-LessonService/internal/usecase/payment_sweep"
)

const msgLockHeld = "проход по платежам уже выполняется"

// SweepResponse HTTP response model
type SweepResponse struct {
	Claimed  int `json:"claimed"`
	Paid     int `json:"paid"`
	Failed   int `json:"failed"`
	Released int `json:"released"`
	Reversed int `json:"reversed"`
}

type Handler struct {
	useCase PaymentSweepUseCase
	logger  Logger
}

func NewHandler(useCase PaymentSweepUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /internal/payments/sweep
// Ручной запуск прохода по платежам, основной путь - планировщик
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	report, err := h.useCase.Execute(r.Context())
	if err != nil {
		if errors.Is(err, paymentSweep.ErrLockHeld) {
			h.logger.Warn("POST /internal/payments/sweep - Sweep already in progress")
			handlers.RespondError(w, http.StatusConflict, msgLockHeld)
			return
		}

		h.logger.Error("POST /internal/payments/sweep - Sweep failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /internal/payments/sweep - Sweep done: claimed=%d paid=%d failed=%d released=%d reversed=%d",
		report.Claimed, report.Paid, report.Failed, report.Released, report.Reversed)
	handlers.RespondJSON(w, http.StatusOK, SweepResponse{
		Claimed:  report.Claimed,
		Paid:     report.Paid,
		Failed:   report.Failed,
		Released: report.Released,
		Reversed: report.Reversed,
	})
}
