package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotAlreadyBooked возвращается, когда на это время уже есть активное бронирование
	ErrSlotAlreadyBooked = errors.New("booking.repository: slot already booked")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")

	// ErrInvalidStatus возвращается при попытке установить недопустимый статус
	ErrInvalidStatus = errors.New("booking.repository: invalid booking status")

	// ErrCannotCancel возвращается, когда бронирование уже не в статусе confirmed
	ErrCannotCancel = errors.New("booking.repository: booking cannot be cancelled")

	// ErrCannotUpdateStatus возвращается при смене статуса отменённого бронирования
	ErrCannotUpdateStatus = errors.New("booking.repository: status of a cancelled booking cannot be changed")
)
