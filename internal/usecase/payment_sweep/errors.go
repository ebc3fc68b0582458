package payment_sweep

import "errors"

var (
	// ErrLockHeld возвращается, когда проход по платежам уже выполняется
	// другим экземпляром сервиса
	ErrLockHeld = errors.New("payment_sweep: sweep lock is held by another instance")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("payment_sweep: internal error")
)
