package domain

import "time"

// Значения конфигурации расписания по умолчанию
const (
	DefaultSlotMinutes        = 60
	MinSlotMinutes            = 5
	DefaultPeriodStartMinutes = 9 * 60
	DefaultPeriodEndMinutes   = 17 * 60
	DefaultWorkingDaysExpr    = "MON-FRI"
	DefaultWorkingHoursExpr   = "09:00-17:00"
	DefaultConfigCacheTTL     = 5 * time.Minute
)

// Ограничения входных данных бронирования
const (
	MaxNameLength               = 120
	MaxEmailLength              = 254
	MaxPhoneLength              = 32
	MaxNotesLength              = 500
	MaxMetadataEntries          = 20
	MaxMetadataValueSize        = 256
	MaxCancellationReasonLength = 500
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DefaultWorkingDays рабочие дни по умолчанию (понедельник - пятница)
var DefaultWorkingDays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
}
