package create_booking

import "errors"

var (
	// ErrSlotNotOffered возвращается, когда пары (дата, время) нет в недельном шаблоне
	ErrSlotNotOffered = errors.New("create_booking: slot is not offered by the calendar")

	// ErrTooSoon возвращается, когда до начала занятия меньше 24 часов
	ErrTooSoon = errors.New("create_booking: lesson starts too soon")

	// ErrAlreadyBooked возвращается, когда слот занят активным занятием
	ErrAlreadyBooked = errors.New("create_booking: slot is already booked")

	// ErrCapacityFull возвращается, когда в групповом слоте не осталось мест
	ErrCapacityFull = errors.New("create_booking: group slot is full")

	// ErrSlotConflict возвращается, когда конкурирующая запись успела занять слот
	// между проверкой и вставкой (нарушение уникального индекса)
	ErrSlotConflict = errors.New("create_booking: slot was taken by a concurrent booking")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
