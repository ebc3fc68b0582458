package create_booking

import (
	"fmt"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/service/availability"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.OwnerID <= 0 {
		return fmt.Errorf("%w: ownerID must be positive", ErrInvalidInput)
	}

	if _, ok := domain.ValidServiceKind(string(req.ServiceKind)); !ok {
		return fmt.Errorf("%w: unknown service kind %q", ErrInvalidInput, req.ServiceKind)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	if len(req.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidInput)
	}

	return nil
}

// reasonToError транслирует код причины отказа в sentinel ошибку usecase
// Коды из одного источника истины, поэтому трансляция общая для всех точек входа
func reasonToError(reason availability.Reason) error {
	switch reason {
	case availability.ReasonSlotNotOffered:
		return ErrSlotNotOffered
	case availability.ReasonTooSoon:
		return ErrTooSoon
	case availability.ReasonAlreadyBooked:
		return ErrAlreadyBooked
	case availability.ReasonCapacityFull:
		return ErrCapacityFull
	default:
		return nil
	}
}

// lessonTypeFor определяет тип записи по виду услуги
func lessonTypeFor(kind domain.ServiceKind) domain.LessonType {
	if kind == domain.KindGroup {
		return domain.TypeGroup
	}
	return domain.TypeSingle
}
