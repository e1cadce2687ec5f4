package validate_payment

// RejectPaymentRequest HTTP request model
type RejectPaymentRequest struct {
	Reason string `json:"reason"`
}
