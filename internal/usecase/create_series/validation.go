package create_series

import (
	"fmt"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// validateRequest валидирует входные данные запроса
// Границы количества занятий зависят от конфигурации, поэтому передаются правилами
func validateRequest(req *Request, rules domain.BookingRules) error {
	if req.OwnerID <= 0 {
		return fmt.Errorf("%w: ownerID must be positive", ErrInvalidInput)
	}

	if _, ok := domain.ValidServiceKind(string(req.ServiceKind)); !ok {
		return fmt.Errorf("%w: unknown service kind %q", ErrInvalidInput, req.ServiceKind)
	}

	if req.AnchorDate.IsZero() {
		return fmt.Errorf("%w: anchorDate is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.Occurrences < domain.MinSeriesOccurrences {
		return fmt.Errorf("%w: series must have at least %d occurrences", ErrInvalidInput, domain.MinSeriesOccurrences)
	}

	if req.Occurrences > rules.MaxSeriesOccurrences {
		return fmt.Errorf("%w: series must have at most %d occurrences", ErrInvalidInput, rules.MaxSeriesOccurrences)
	}

	if req.AmountPerLesson <= 0 {
		return fmt.Errorf("%w: amountPerLesson must be positive", ErrInvalidInput)
	}

	if len(req.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidInput)
	}

	return nil
}
