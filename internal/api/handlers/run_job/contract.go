package run_job

import (
	"context"
)

type JobRunner interface {
	RunNow(ctx context.Context, name string) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
