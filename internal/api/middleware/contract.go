package middleware

import "time"

// HTTPMetrics интерфейс учёта HTTP-запросов
type HTTPMetrics interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}
