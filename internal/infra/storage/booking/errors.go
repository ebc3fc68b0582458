package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда занятие не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotTaken возвращается при нарушении уникальности слота
	// (конкурирующая запись успела занять слот первой)
	ErrSlotTaken = errors.New("booking.repository: slot already taken")

	// ErrInvalidPaymentState возвращается, когда условный переход статуса оплаты
	// не затронул ни одной строки (строка уже не в ожидаемом статусе)
	ErrInvalidPaymentState = errors.New("booking.repository: booking is not in expected payment state")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
