package schedule

import "errors"

var (
	// ErrInvalidDayToken возвращается для нераспознанного названия дня недели
	ErrInvalidDayToken = errors.New("schedule: invalid day token")

	// ErrInvalidHourRange возвращается для некорректного диапазона часов
	ErrInvalidHourRange = errors.New("schedule: invalid hour range")
)
