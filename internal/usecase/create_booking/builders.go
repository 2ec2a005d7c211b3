package create_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// buildProfile собирает профиль клиента из запроса и созданного бронирования
func buildProfile(req *Request, booking *domain.Booking, loc *time.Location) *domain.CustomerProfile {
	local := booking.StartTime.In(loc)
	end := booking.EndTime.In(loc)

	optIn := true
	if req.ReminderOptIn != nil {
		optIn = *req.ReminderOptIn
	}

	return &domain.CustomerProfile{
		Email:               booking.CustomerEmail,
		Name:                booking.CustomerName,
		Phone:               booking.CustomerPhone,
		SessionTypes:        []domain.SessionType{booking.SessionType},
		PreferredDays:       []time.Weekday{local.Weekday()},
		PreferredTimeRanges: []string{local.Format(domain.TimeFormat) + "-" + end.Format(domain.TimeFormat)},
		ReminderOptIn:       optIn,
		Locale:              strings.TrimSpace(req.Locale),
		Notes:               req.Notes,
		LastBookingAt:       booking.CreatedAt,
	}
}

// buildReminders создаёт напоминания для смещений, момент отправки которых ещё впереди
func buildReminders(booking *domain.Booking, offsets []time.Duration, now time.Time) []*domain.ReminderLog {
	result := make([]*domain.ReminderLog, 0, len(offsets))
	for _, offset := range offsets {
		if offset <= 0 {
			continue
		}
		scheduled := booking.StartTime.Add(-offset)
		if !scheduled.After(now) {
			continue
		}
		result = append(result, &domain.ReminderLog{
			BookingID:    booking.ID,
			Kind:         ReminderKind(offset),
			ScheduledFor: scheduled,
			Status:       domain.ReminderPending,
		})
	}
	return result
}

// ReminderKind метка напоминания по смещению: 24h, 30m, 1h30m
func ReminderKind(offset time.Duration) string {
	hours := int(offset / time.Hour)
	minutes := int((offset % time.Hour) / time.Minute)

	switch {
	case hours > 0 && minutes == 0:
		return fmt.Sprintf("%dh", hours)
	case hours == 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
}
