package notifier

import "time"

// EventType тип уведомления
type EventType string

const (
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingReminder  EventType = "booking.reminder"
	EventBookingCancelled EventType = "booking.cancelled"
)

// Notification тело webhook-запроса
type Notification struct {
	Event         EventType         `json:"event"`
	BookingID     string            `json:"bookingId"`
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail"`
	SessionType   string            `json:"sessionType"`
	StartTime     time.Time         `json:"startTime"`
	EndTime       time.Time         `json:"endTime"`
	TimeZone      string            `json:"timeZone"`
	Reminder      string            `json:"reminder,omitempty"` // "24h", "2h"
	Metadata      map[string]string `json:"metadata,omitempty"`
	SentAt        time.Time         `json:"sentAt"`
}
