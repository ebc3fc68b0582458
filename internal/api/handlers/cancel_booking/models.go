package cancel_booking

// CancelBookingRequest HTTP request model
// Причина отмены опциональна
type CancelBookingRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	Status           string `json:"status"`
	Refunded         bool   `json:"refunded"`
	RefundUnresolved bool   `json:"refundUnresolved,omitempty"`
}
