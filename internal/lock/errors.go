package lock

import "errors"

var (
	// ErrConnect возвращается, когда не удалось подключиться к Redis
	ErrConnect = errors.New("lock: failed to connect to redis")

	// ErrInternal возвращается при ошибках выполнения команд Redis
	ErrInternal = errors.New("lock: internal error")
)
