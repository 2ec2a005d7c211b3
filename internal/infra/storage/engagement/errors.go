package engagement

import "errors"

var (
	// ErrEngagementNotFound возвращается, когда запись не найдена
	ErrEngagementNotFound = errors.New("engagement.repository: engagement not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("engagement.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("engagement.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("engagement.repository: failed to scan row")
)
