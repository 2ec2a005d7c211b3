package get_schedule_config

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const endOfDay types.TimeString = "24:00"

// ScheduleConfigResponse HTTP response model
type ScheduleConfigResponse struct {
	WorkingDays       []string `json:"workingDays"`
	WorkingHours      []string `json:"workingHours"` // "09:00-12:00"
	SlotMinutes       int      `json:"slotMinutes"`
	TimeZone          string   `json:"timeZone"`
	MinAdvanceHours   int      `json:"minAdvanceHours"`
	MaxAdvanceDays    int      `json:"maxAdvanceDays"`
	CancellationHours int      `json:"cancellationHours"`
	Source            string   `json:"source"`
}

// FromDomain конвертирует конфигурацию в HTTP response
func FromDomain(c *domain.ScheduleConfig) *ScheduleConfigResponse {
	days := make([]string, 0, len(c.WorkingDays))
	for _, d := range c.WorkingDays {
		days = append(days, d.String())
	}

	hours := make([]string, 0, len(c.Periods))
	for _, p := range c.Periods {
		start, err := types.FromMinutes(p.StartMinutes)
		if err != nil {
			continue
		}
		end := endOfDay
		if p.EndMinutes < 24*60 {
			if end, err = types.FromMinutes(p.EndMinutes); err != nil {
				continue
			}
		}
		hours = append(hours, start.String()+"-"+end.String())
	}

	return &ScheduleConfigResponse{
		WorkingDays:       days,
		WorkingHours:      hours,
		SlotMinutes:       c.SlotMinutes,
		TimeZone:          c.Zone().String(),
		MinAdvanceHours:   c.MinAdvanceHours,
		MaxAdvanceDays:    c.MaxAdvanceDays,
		CancellationHours: c.CancellationHours,
		Source:            string(c.Source),
	}
}
