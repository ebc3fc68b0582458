package domain

import (
	"time"

	"github.com/m04kA/SMC-LessonService/pkg/types"
)

// BookingStatus статус занятия
// Единственный допустимый переход: scheduled -> cancelled (без восстановления)
type BookingStatus string

const (
	StatusScheduled BookingStatus = "scheduled"
	StatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus статус оплаты занятия
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "payment_failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// ServiceKind вид услуги
type ServiceKind string

const (
	KindIndividual ServiceKind = "individual"
	KindGroup      ServiceKind = "group"
	KindExamPrep   ServiceKind = "exam_prep"
)

// LessonType тип записи
type LessonType string

const (
	TypeSingle    LessonType = "single"
	TypeRecurring LessonType = "recurring"
	TypeGroup     LessonType = "group"
)

// Booking одно занятие в расписании
// Для еженедельной серии каждое занятие - отдельная строка с общим SeriesID
type Booking struct {
	ID          int64
	OwnerID     int64
	ServiceKind ServiceKind
	LessonType  LessonType

	// Конкретный слот. Неизменяем после создания - отмена не двигает занятие
	LessonDate      time.Time
	StartTime       types.TimeString
	Weekday         time.Weekday
	DurationMinutes int

	Status        BookingStatus
	PaymentStatus PaymentStatus

	Amount   float64
	Currency string

	// Заполнены только для занятий серии
	SeriesID       *string
	SeriesSequence *int
	SeriesTotal    *int

	PaymentProviderRef   *string
	PaymentFailureReason *string

	// Выставляется, если отмена прошла, а возврат средств - нет
	// Такие строки разбирает поддержка вручную
	RefundUnresolved bool

	// Момент за 24 часа до начала занятия. Вычисляется один раз при создании
	// и сохраняется: сдвиг часов сервера не меняет уже данные обязательства
	CancellationDeadline time.Time

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LessonStart возвращает момент начала занятия
func (b *Booking) LessonStart() time.Time {
	return b.StartTime.OnDate(b.LessonDate)
}

// IsActive возвращает true, если занятие занимает слот
// Авторитет для занятости слота - только Status, не PaymentStatus:
// неудавшийся возврат не должен навсегда блокировать слот
func (b *Booking) IsActive() bool {
	return b.Status == StatusScheduled
}

// IsCancelled возвращает true, если занятие отменено
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// IsPartOfSeries возвращает true, если занятие входит в еженедельную серию
func (b *Booking) IsPartOfSeries() bool {
	return b.SeriesID != nil
}

// IsLastInSeries возвращает true для последнего занятия серии
func (b *Booking) IsLastInSeries() bool {
	return b.SeriesSequence != nil && b.SeriesTotal != nil && *b.SeriesSequence == *b.SeriesTotal
}

// RefundableAt возвращает true, если на момент now отмена дает право на возврат
// (строго раньше дедлайна, т.е. больше 24 часов до начала занятия)
func (b *Booking) RefundableAt(now time.Time) bool {
	return now.Before(b.CancellationDeadline)
}

// NewCancellationDeadline вычисляет дедлайн отмены для слота:
// начало занятия минус настроенный период уведомления
func NewCancellationDeadline(lessonDate time.Time, startTime types.TimeString, noticeHours int) time.Time {
	return startTime.OnDate(lessonDate).Add(-time.Duration(noticeHours) * time.Hour)
}

// ValidServiceKind проверяет, что строка - допустимый вид услуги
func ValidServiceKind(s string) (ServiceKind, bool) {
	switch ServiceKind(s) {
	case KindIndividual, KindGroup, KindExamPrep:
		return ServiceKind(s), true
	}
	return "", false
}

// ValidBookingStatus проверяет, что строка - допустимый статус занятия
func ValidBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case StatusScheduled, StatusCancelled:
		return BookingStatus(s), true
	}
	return "", false
}

// ScheduleFilter фильтр для выборки занятий расписания
type ScheduleFilter struct {
	StartDate       *time.Time // Начало периода (опционально)
	EndDate         *time.Time // Конец периода (опционально)
	Status          *BookingStatus
	IncludeInactive bool // Включать ли отмененные занятия
}
