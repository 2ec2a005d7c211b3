package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/integrations/settingsservice"
)

// SettingsClient интерфейс удалённого источника настроек
type SettingsClient interface {
	GetWorkingHours(ctx context.Context) (*settingsservice.WorkingHours, error)
	GetBookingSettings(ctx context.Context) (*settingsservice.BookingSettings, error)
}

// Metrics интерфейс для учёта обращений к конфигурации
type Metrics interface {
	IncScheduleConfig(result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
