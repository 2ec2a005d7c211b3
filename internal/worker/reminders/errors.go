package reminders

import "errors"

var (
	// ErrInvalidSchedule возвращается при некорректном cron-выражении
	ErrInvalidSchedule = errors.New("reminders: invalid schedule")

	// ErrAlreadyStarted возвращается при повторном запуске диспетчера
	ErrAlreadyStarted = errors.New("reminders: dispatcher already started")
)
