package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ScheduleProvider источник конфигурации расписания
type ScheduleProvider interface {
	GetScheduleConfig(ctx context.Context) *domain.ScheduleConfig
}

// BookingRepository интерфейс журнала бронирований
type BookingRepository interface {
	ListActiveByRange(ctx context.Context, from, to time.Time) ([]*domain.Booking, error)
}

// CalendarClient интерфейс внешнего календаря
type CalendarClient interface {
	QueryFreeBusy(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]domain.BusyInterval, error)
}

// Metrics интерфейс для учёта запросов доступности
type Metrics interface {
	IncAvailability(mode string)
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
