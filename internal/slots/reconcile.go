package slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// FilterAvailable оставляет слоты, не пересекающиеся ни с одним интервалом занятости
//
// Начало слота - дата date со временем слота в зоне loc, конец - начало + slotMinutes.
// Пересечение строгое: slotStart < busy.End && slotEnd > busy.Start, поэтому
// слот, заканчивающийся ровно в момент начала занятости (или наоборот), остаётся доступным.
// Порядок кандидатов сохраняется.
func FilterAvailable(
	candidates []types.TimeString,
	busy []domain.BusyInterval,
	date time.Time,
	slotMinutes int,
	loc *time.Location,
) []types.TimeString {
	result := make([]types.TimeString, 0, len(candidates))

	for _, slot := range candidates {
		start := slot.On(date, loc)
		end := start.Add(time.Duration(slotMinutes) * time.Minute)

		if !overlapsAny(start, end, busy) {
			result = append(result, slot)
		}
	}

	return result
}

// FilterFrom оставляет слоты, начинающиеся не раньше earliest
func FilterFrom(candidates []types.TimeString, date time.Time, loc *time.Location, earliest time.Time) []types.TimeString {
	result := make([]types.TimeString, 0, len(candidates))
	for _, slot := range candidates {
		if !slot.On(date, loc).Before(earliest) {
			result = append(result, slot)
		}
	}
	return result
}

// BookingsAsBusy превращает активные бронирования в интервалы занятости
func BookingsAsBusy(bookings []*domain.Booking) []domain.BusyInterval {
	busy := make([]domain.BusyInterval, 0, len(bookings))
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		busy = append(busy, domain.BusyInterval{Start: b.StartTime, End: b.EndTime})
	}
	return busy
}

func overlapsAny(start, end time.Time, busy []domain.BusyInterval) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
