package notifier

import "errors"

var (
	// ErrDisabled возвращается, если webhook не настроен
	ErrDisabled = errors.New("notifier: webhook is not configured")

	// ErrDeliveryFailed возвращается, если webhook не принял уведомление
	ErrDeliveryFailed = errors.New("notifier: delivery failed")
)
