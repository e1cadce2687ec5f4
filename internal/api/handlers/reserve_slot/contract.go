package reserve_slot

import (
	"context"

	reserveSlot "github.com/m04kA/SMC-CourtSlotService/internal/usecase/reserve_slot"
)

type UseCase interface {
	Execute(ctx context.Context, req *reserveSlot.Request) (*reserveSlot.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
