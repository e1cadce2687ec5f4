package create_recurring

import (
	"context"

	"github.com/m04kA/SMC-CourtSlotService/internal/service/recurring"
)

type RecurringService interface {
	Create(ctx context.Context, req *recurring.CreateRequest) (*recurring.CreateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
