package create_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Названия побочных эффектов после фиксации бронирования
const (
	SideEffectProfile    = "profile_upsert"
	SideEffectReminders  = "reminders_enqueue"
	SideEffectEngagement = "engagement_seed"
	SideEffectNotify     = "confirmation_notify"
)

// Исходы попытки бронирования для метрик
const (
	outcomeCommitted = "committed"
	outcomeConflict  = "conflict"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

// Request модель запроса на создание бронирования
type Request struct {
	Name          string
	Email         string
	Phone         *string
	Date          time.Time        // Дата (используются только год, месяц, день)
	Time          types.TimeString // Время начала слота, "HH:MM"
	SessionType   domain.SessionType
	TimeZone      string // IANA-зона клиента (опционально)
	Notes         *string
	Locale        string
	ReminderOptIn *bool             // nil - напоминания включены
	Metadata      map[string]string // Например serviceId, source
}

// SideEffectResult результат одного побочного эффекта; Err == nil - успех
type SideEffectResult struct {
	Name string
	Err  error
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking     *domain.Booking
	SideEffects []SideEffectResult
}

// ReminderOffset за сколько до начала сессии отправить напоминание
type ReminderOffset struct {
	Kind   string        // "24h", "2h"
	Before time.Duration // смещение от начала
}
