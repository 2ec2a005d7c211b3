package slots

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ResolveLocation возвращает зону запроса, если это корректная IANA-зона,
// иначе зону бизнеса из конфигурации
func ResolveLocation(timeZone string, config *domain.ScheduleConfig) *time.Location {
	if tz := strings.TrimSpace(timeZone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	if config == nil {
		return time.UTC
	}
	return config.Zone()
}

// DayBounds возвращает начало суток date и начало следующих суток в зоне loc
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}
