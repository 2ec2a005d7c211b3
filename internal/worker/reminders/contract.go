package reminders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ReminderRepository интерфейс журнала напоминаний
type ReminderRepository interface {
	ListDue(ctx context.Context, now time.Time, limit uint64) ([]*domain.DueReminder, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// BookingRepository интерфейс журнала бронирований
type BookingRepository interface {
	SetLastReminderAt(ctx context.Context, id uuid.UUID, at time.Time) error
}

// EngagementRepository интерфейс записей жизненного цикла
type EngagementRepository interface {
	UpdateStage(ctx context.Context, bookingID uuid.UUID, stage domain.EngagementStage) error
}

// Notifier интерфейс отправки напоминаний
type Notifier interface {
	NotifyReminder(ctx context.Context, booking *domain.Booking, kind string) error
}

// Metrics интерфейс учёта отправленных напоминаний
type Metrics interface {
	IncReminder(status string)
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
