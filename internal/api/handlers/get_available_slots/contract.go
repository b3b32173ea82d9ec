package get_available_slots

import (
	"context"

	getSlots "github.com/m04kA/SMC-WidgetBookingService/internal/usecase/get_available_slots"
)

type GetAvailableSlotsUseCase interface {
	Execute(ctx context.Context, req *getSlots.Request) (*getSlots.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
