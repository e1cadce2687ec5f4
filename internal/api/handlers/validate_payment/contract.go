package validate_payment

import (
	"context"

	"github.com/m04kA/SMC-CourtSlotService/internal/service/payments"
)

type PaymentService interface {
	Approve(ctx context.Context, paymentID int64, userID int64) (*payments.Result, error)
	Reject(ctx context.Context, paymentID int64, userID int64, reason string) (*payments.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
