package get_day_schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(dateStr, timeZone string) (*models.GetDayScheduleRequest, error) {
	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(dateStr))
	if err != nil {
		return nil, err
	}

	timeZone = strings.TrimSpace(timeZone)
	if timeZone != "" {
		if _, err := time.LoadLocation(timeZone); err != nil {
			return nil, fmt.Errorf("unknown time zone %q", timeZone)
		}
	}

	return &models.GetDayScheduleRequest{
		Date:     date,
		TimeZone: timeZone,
	}, nil
}
