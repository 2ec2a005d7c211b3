package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetByEmail(ctx context.Context, email string) ([]*domain.Booking, error)
	ListBookedTimes(ctx context.Context, date time.Time, loc *time.Location) ([]types.TimeString, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error
	Cancel(ctx context.Context, id uuid.UUID, reason *string, at time.Time) error
}

// ReminderRepository интерфейс журнала напоминаний
type ReminderRepository interface {
	CancelPending(ctx context.Context, bookingID uuid.UUID) (int64, error)
}

// EngagementRepository интерфейс записей жизненного цикла
type EngagementRepository interface {
	UpdateStage(ctx context.Context, bookingID uuid.UUID, stage domain.EngagementStage) error
}

// AvailabilityUseCase расчёт свободного времени на дату
type AvailabilityUseCase interface {
	Execute(ctx context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error)
}

// ScheduleProvider источник конфигурации расписания
type ScheduleProvider interface {
	GetScheduleConfig(ctx context.Context) *domain.ScheduleConfig
}

// Notifier интерфейс отправки уведомлений
type Notifier interface {
	NotifyCancelled(ctx context.Context, booking *domain.Booking) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
