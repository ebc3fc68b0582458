package get_available_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// UseCase получение слотов на дату с их доступностью
type UseCase struct {
	checker AvailabilityChecker
	logger  Logger
}

// NewUseCase создает новый usecase получения слотов
func NewUseCase(checker AvailabilityChecker, logger Logger) *UseCase {
	return &UseCase{
		checker: checker,
		logger:  logger,
	}
}

// Execute возвращает все слоты шаблона на дату
// Для прошедших дат и закрытых дней список пуст
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	kind := req.Kind
	if kind == "" {
		kind = domain.KindIndividual
	}
	if _, ok := domain.ValidServiceKind(string(kind)); !ok {
		return nil, fmt.Errorf("%w: unknown service kind %q", ErrInvalidInput, kind)
	}

	statuses, err := uc.checker.DayOverview(ctx, req.Date, kind)
	if err != nil {
		uc.logger.Error("Execute: day overview failed for date=%s: %v", req.Date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: Execute - day overview: %v", ErrInternal, err)
	}

	slots := make([]SlotResponse, 0, len(statuses))
	for _, s := range statuses {
		slots = append(slots, SlotResponse{
			StartTime:       s.StartTime,
			DurationMinutes: s.DurationMinutes,
			AvailableSpots:  s.AvailableSpots,
			TotalSpots:      s.TotalSpots,
			Bookable:        s.Bookable,
			Reason:          string(s.Reason),
		})
	}

	return &Response{
		Date:  req.Date,
		Kind:  string(kind),
		Slots: slots,
	}, nil
}
