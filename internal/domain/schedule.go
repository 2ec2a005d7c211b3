package domain

import (
	"time"
)

// ConfigSource откуда была получена конфигурация расписания
type ConfigSource string

const (
	SourceRemote ConfigSource = "remote"
	SourceEnv    ConfigSource = "env"
)

// Period рабочий интервал дня в минутах от полуночи (локальное время бизнеса)
type Period struct {
	StartMinutes int
	EndMinutes   int
}

// ScheduleConfig разрешённая конфигурация расписания
// Не изменяется после создания: при обновлении кэша заменяется целиком
type ScheduleConfig struct {
	WorkingDays []time.Weekday // отсортированы, без повторов
	SlotMinutes int
	Periods     []Period
	Location    *time.Location

	MinAdvanceHours   int
	MaxAdvanceDays    int // 0 = без ограничения
	CancellationHours int

	Source ConfigSource
}

// IsWorkingDay проверяет, что день недели рабочий
func (c *ScheduleConfig) IsWorkingDay(day time.Weekday) bool {
	for _, d := range c.WorkingDays {
		if d == day {
			return true
		}
	}
	return false
}

// HasAdvanceBookingLimit возвращает true, если есть ограничение на бронирование заранее
func (c *ScheduleConfig) HasAdvanceBookingLimit() bool {
	return c.MaxAdvanceDays > 0
}

// Zone возвращает зону бизнеса (UTC, если не задана)
func (c *ScheduleConfig) Zone() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// BusyInterval интервал занятости из внешнего календаря, полуоткрытый [Start, End)
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Overlaps проверяет строгое пересечение с интервалом [start, end)
// Касание границ (конец одного равен началу другого) пересечением не считается
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}
