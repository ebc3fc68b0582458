package payprovider

import "errors"

var (
	// ErrChargeDeclined возвращается, когда провайдер отклонил списание
	// Это окончательный отказ - повторять списание нельзя
	ErrChargeDeclined = errors.New("payprovider: charge declined")

	// ErrRefundDeclined возвращается, когда провайдер отклонил возврат
	ErrRefundDeclined = errors.New("payprovider: refund declined")

	// ErrIndeterminate возвращается, когда исход операции неизвестен
	// (таймаут или обрыв соединения). Это НЕ отказ: вызывающая сторона
	// должна оставить строку в исходном статусе и повторить позже
	ErrIndeterminate = errors.New("payprovider: operation outcome is unknown")

	// ErrInvalidResponse возвращается при некорректном ответе провайдера
	ErrInvalidResponse = errors.New("payprovider: invalid provider response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("payprovider: internal error")
)
