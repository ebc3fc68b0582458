package create_series

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/service/availability"
)

var (
	// ErrSeriesNotAvailable возвращается, когда хотя бы одно занятие серии
	// не может быть создано - серия создается только целиком
	ErrSeriesNotAvailable = errors.New("create_series: series is not fully available")

	// ErrSlotConflict возвращается, когда конкурирующая запись успела занять
	// один из слотов серии между проверкой и вставкой
	ErrSlotConflict = errors.New("create_series: slot was taken by a concurrent booking")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_series: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_series: internal error")
)

// OccurrenceUnavailableError указывает на первое недоступное занятие серии
// Разворачивается в ErrSeriesNotAvailable для проверок errors.Is
type OccurrenceUnavailableError struct {
	Sequence int
	Date     time.Time
	Reason   availability.Reason
}

func (e *OccurrenceUnavailableError) Error() string {
	return fmt.Sprintf("create_series: occurrence %d on %s is unavailable: %s",
		e.Sequence, e.Date.Format(domain.DateFormat), e.Reason)
}

func (e *OccurrenceUnavailableError) Unwrap() error {
	return ErrSeriesNotAvailable
}
