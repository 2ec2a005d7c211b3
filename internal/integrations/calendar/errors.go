package calendar

import "errors"

var (
	// ErrNotConfigured возвращается, когда календарь не настроен (нет URL или календаря)
	ErrNotConfigured = errors.New("calendar: not configured")

	// ErrUnavailable возвращается при любой ошибке обращения к календарю
	ErrUnavailable = errors.New("calendar: service unavailable")

	// ErrInvalidResponse возвращается, если ответ не удалось разобрать
	ErrInvalidResponse = errors.New("calendar: invalid response")

	// ErrInvalidRange возвращается, если timeMin не раньше timeMax
	ErrInvalidRange = errors.New("calendar: invalid time range")
)
