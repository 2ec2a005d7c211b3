package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusNoShow    BookingStatus = "no_show"
	StatusCancelled BookingStatus = "cancelled"
)

// SessionType формат сессии
type SessionType string

const (
	SessionOnline     SessionType = "online"
	SessionPresencial SessionType = "presencial"
)

// Booking подтверждённая запись клиента на слот
// Время начала и окончания хранится в UTC, TimeZone нужна только для отображения
type Booking struct {
	ID            uuid.UUID
	CustomerName  string
	CustomerEmail string // всегда в нижнем регистре
	CustomerPhone *string
	SessionType   SessionType
	StartTime     time.Time
	EndTime       time.Time
	TimeZone      string
	Status        BookingStatus
	Metadata      map[string]string

	CancellationReason *string
	CancelledAt        *time.Time
	LastReminderAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive возвращает true, если бронирование занимает слот
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// CanBeCancelled возвращает true, если бронирование можно отменить
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusConfirmed
}

// Location возвращает зону, в которой было сделано бронирование (UTC, если зона неизвестна)
func (b *Booking) Location() *time.Location {
	loc, err := time.LoadLocation(b.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsValidSessionType проверяет, что тип сессии поддерживается
func IsValidSessionType(s SessionType) bool {
	return s == SessionOnline || s == SessionPresencial
}

// IsValidBookingStatus проверяет, что статус существует
func IsValidBookingStatus(s BookingStatus) bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusNoShow, StatusCancelled:
		return true
	default:
		return false
	}
}
