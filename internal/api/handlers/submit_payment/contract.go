package submit_payment

import (
	"context"

	"github.com/m04kA/SMC-CourtSlotService/internal/service/payments"
)

type PaymentService interface {
	SubmitProof(ctx context.Context, req *payments.SubmitRequest) (*payments.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
