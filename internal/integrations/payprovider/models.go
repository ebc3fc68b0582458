package payprovider

// ChargeRequest запрос на списание средств
type ChargeRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	PayerRef string  `json:"payerRef"`
}

// ChargeResponse ответ провайдера на списание
type ChargeResponse struct {
	ProviderRef string `json:"providerRef"`
}

// RefundRequest запрос на возврат средств
type RefundRequest struct {
	ProviderRef string `json:"providerRef"`
}

// RefundResponse ответ провайдера на возврат
type RefundResponse struct {
	RefundRef string `json:"refundRef"`
}

// errorResponse тело ответа провайдера при отказе
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
