package schedule

import (
	"time"

	"github.com/spf13/viper"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Переменные окружения с настройками расписания по умолчанию
const (
	EnvWorkingDays       = "BOOKING_WORKING_DAYS"
	EnvWorkingHours      = "BOOKING_WORKING_HOURS"
	EnvSlotMinutes       = "BOOKING_SLOT_MINUTES"
	EnvMinAdvanceHours   = "BOOKING_MIN_ADVANCE_HOURS"
	EnvMaxAdvanceDays    = "BOOKING_MAX_ADVANCE_DAYS"
	EnvCancellationHours = "BOOKING_CANCELLATION_HOURS"
)

// EnvDefaults локальные настройки расписания, используемые при недоступности удалённого источника
type EnvDefaults struct {
	WorkingDays       string
	WorkingHours      string
	SlotMinutes       int
	MinAdvanceHours   int
	MaxAdvanceDays    int
	CancellationHours int
}

// LoadEnvDefaults читает настройки расписания из окружения
func LoadEnvDefaults() EnvDefaults {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(EnvWorkingDays, domain.DefaultWorkingDaysExpr)
	v.SetDefault(EnvWorkingHours, domain.DefaultWorkingHoursExpr)
	v.SetDefault(EnvSlotMinutes, domain.DefaultSlotMinutes)
	v.SetDefault(EnvMinAdvanceHours, 0)
	v.SetDefault(EnvMaxAdvanceDays, 0)
	v.SetDefault(EnvCancellationHours, 0)

	return EnvDefaults{
		WorkingDays:       v.GetString(EnvWorkingDays),
		WorkingHours:      v.GetString(EnvWorkingHours),
		SlotMinutes:       v.GetInt(EnvSlotMinutes),
		MinAdvanceHours:   v.GetInt(EnvMinAdvanceHours),
		MaxAdvanceDays:    v.GetInt(EnvMaxAdvanceDays),
		CancellationHours: v.GetInt(EnvCancellationHours),
	}
}

// BuildFromEnv строит конфигурацию расписания только из локальных настроек (без сетевых вызовов)
func BuildFromEnv(env EnvDefaults, loc *time.Location) *domain.ScheduleConfig {
	days := ParseDayExpression(env.WorkingDays)
	if len(days) == 0 {
		days = defaultWorkingDays()
	}

	periods := ParseHourRanges(env.WorkingHours)
	if len(periods) == 0 {
		periods = defaultPeriods()
	}

	return &domain.ScheduleConfig{
		WorkingDays:       days,
		SlotMinutes:       normalizeSlotMinutes(env.SlotMinutes),
		Periods:           periods,
		Location:          loc,
		MinAdvanceHours:   nonNegative(env.MinAdvanceHours),
		MaxAdvanceDays:    nonNegative(env.MaxAdvanceDays),
		CancellationHours: nonNegative(env.CancellationHours),
		Source:            domain.SourceEnv,
	}
}
