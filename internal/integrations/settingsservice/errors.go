package settingsservice

import "errors"

var (
	// ErrNotConfigured возвращается, когда настройка отсутствует в источнике или клиент не настроен
	ErrNotConfigured = errors.New("settingsservice client: setting not configured")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("settingsservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("settingsservice client: invalid response")

	// ErrUnavailable возвращается, когда сервис настроек недоступен
	ErrUnavailable = errors.New("settingsservice client: service unavailable")
)
