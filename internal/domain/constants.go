package domain

// Правило 24 часов: значение по умолчанию для периода уведомления,
// управляющего и моментом списания оплаты, и правом на возврат при отмене.
// Фактический период берется из конфигурации (booking.notice_hours)
const CancellationNoticeHours = 24

// Default configuration values
const (
	DefaultSlotDurationMinutes  = 60
	DefaultGroupCapacity        = 6
	DefaultMaxSeriesOccurrences = 52
)

// Business validation constants
const (
	MinSeriesOccurrences        = 2
	MaxCancellationReasonLength = 500
)

// DateFormat формат дат в API (YYYY-MM-DD)
const DateFormat = "2006-01-02"
