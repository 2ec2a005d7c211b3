package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

var (
	// ErrUnsupportedDriver возвращается для неизвестного драйвера БД
	ErrUnsupportedDriver = errors.New("database: unsupported driver")

	// ErrOpen возвращается, если не удалось открыть соединение
	ErrOpen = errors.New("database: failed to open connection")

	// ErrMigrate возвращается при ошибке применения миграций
	ErrMigrate = errors.New("database: migration failed")
)

const pgUniqueViolation = "23505"

// IsUniqueViolation сообщает, что запрос нарушил уникальный индекс
// Поддерживает lib/pq (23505) и modernc sqlite (SQLITE_CONSTRAINT_UNIQUE / PRIMARYKEY)
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code == sqlitelib.SQLITE_CONSTRAINT_UNIQUE || code == sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
