package testfixtures

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/database"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
)

// NewSQLite открывает временную базу SQLite во временной директории теста
// и применяет миграции. Соединение закрывается автоматически по завершении теста.
func NewSQLite(tb testing.TB) *dbmetrics.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "appointments.db")
	ctx := context.Background()

	db, dialect, err := database.Open(ctx, database.Options{
		Driver: database.DriverSQLite,
		DSN:    path,
	})
	if err != nil {
		tb.Fatalf("failed to open sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(ctx, db, dialect, nil); err != nil {
		tb.Fatalf("failed to migrate sqlite: %v", err)
	}

	return dbmetrics.Wrap(db, nil)
}

// RawSQLite возвращает *sql.DB для тестов, которым нужен прямой доступ
func RawSQLite(tb testing.TB) *sql.DB {
	tb.Helper()
	return NewSQLite(tb).Raw()
}
