package get_schedule_config

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type ScheduleService interface {
	GetScheduleConfig(ctx context.Context) *domain.ScheduleConfig
}

type Logger interface {
	Info(format string, v ...interface{})
}
