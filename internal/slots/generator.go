package slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// IsWorkingDay проверяет, что календарная дата date приходится на рабочий день
func IsWorkingDay(date time.Time, config *domain.ScheduleConfig) bool {
	return config.IsWorkingDay(date.Weekday())
}

// ComputeSlotsForDate генерирует кандидатов на запись для даты
//
// Для каждого периода (в порядке конфигурации) курсор идёт от начала периода с шагом
// SlotMinutes, слот добавляется, пока cursor+SlotMinutes <= конец периода.
// Периоды не сортируются и не дедуплицируются: при пересекающихся периодах
// возможны повторяющиеся слоты.
func ComputeSlotsForDate(date time.Time, config *domain.ScheduleConfig) []types.TimeString {
	result := make([]types.TimeString, 0)

	if config == nil || config.SlotMinutes <= 0 || !IsWorkingDay(date, config) {
		return result
	}

	step := config.SlotMinutes
	for _, period := range config.Periods {
		for cursor := period.StartMinutes; cursor+step <= period.EndMinutes; cursor += step {
			slot, err := types.FromMinutes(cursor)
			if err != nil {
				break
			}
			result = append(result, slot)
		}
	}

	return result
}

// IsCandidate проверяет, что время входит в сгенерированные слоты даты
func IsCandidate(date time.Time, startTime types.TimeString, config *domain.ScheduleConfig) bool {
	for _, slot := range ComputeSlotsForDate(date, config) {
		if slot == startTime {
			return true
		}
	}
	return false
}
