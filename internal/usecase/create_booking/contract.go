package create_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ScheduleProvider источник конфигурации расписания
type ScheduleProvider interface {
	GetScheduleConfig(ctx context.Context) *domain.ScheduleConfig
}

// BookingRepository интерфейс журнала бронирований
type BookingRepository interface {
	IsSlotBooked(ctx context.Context, startTime time.Time) (bool, error)
	TryReserve(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// ProfileRepository интерфейс репозитория профилей клиентов
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.CustomerProfile) (*domain.CustomerProfile, error)
}

// ReminderRepository интерфейс журнала напоминаний
type ReminderRepository interface {
	CreateBatch(ctx context.Context, reminders []*domain.ReminderLog) error
}

// EngagementRepository интерфейс записей жизненного цикла
type EngagementRepository interface {
	Seed(ctx context.Context, bookingID uuid.UUID, stage domain.EngagementStage) error
}

// Notifier интерфейс отправки уведомлений
type Notifier interface {
	NotifyConfirmed(ctx context.Context, booking *domain.Booking) error
}

// Metrics интерфейс для учёта попыток бронирования
type Metrics interface {
	IncBooking(outcome string)
	IncSideEffectFailure(name string)
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
