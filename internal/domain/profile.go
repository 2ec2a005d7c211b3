package domain

import (
	"time"

	"github.com/google/uuid"
)

// CustomerProfile предпочтения клиента, ключ - email в нижнем регистре
// Обновляется при каждом бронировании и никогда не блокирует его
type CustomerProfile struct {
	Email               string
	Name                string
	Phone               *string
	SessionTypes        []SessionType
	PreferredDays       []time.Weekday
	PreferredTimeRanges []string // "HH:MM-HH:MM"
	ReminderOptIn       bool
	Locale              string
	Notes               *string
	LastBookingAt       time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ReminderStatus статус напоминания
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderSent      ReminderStatus = "sent"
	ReminderFailed    ReminderStatus = "failed"
	ReminderCancelled ReminderStatus = "cancelled"
)

// ReminderLog запланированное напоминание о бронировании
type ReminderLog struct {
	ID           uuid.UUID
	BookingID    uuid.UUID
	Kind         string // например "24h", "2h"
	ScheduledFor time.Time
	Status       ReminderStatus
	SentAt       *time.Time
	Error        *string
	CreatedAt    time.Time
}

// DueReminder напоминание, готовое к отправке, вместе с бронированием
type DueReminder struct {
	Reminder ReminderLog
	Booking  Booking
}

// EngagementStage этап жизненного цикла после бронирования
type EngagementStage string

const (
	EngagementBooked   EngagementStage = "booked"
	EngagementReminded EngagementStage = "reminded"
	EngagementAttended EngagementStage = "attended"
	EngagementNoShow   EngagementStage = "no_show"
)

// Engagement запись отслеживания жизненного цикла бронирования
type Engagement struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	Stage     EngagementStage
	CreatedAt time.Time
	UpdatedAt time.Time
}
