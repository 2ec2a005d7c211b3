package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	sqliteBusyTimeoutMs = 5000
)

// Options параметры подключения к БД
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open открывает соединение и проверяет его
// Для SQLite пул ограничивается одним соединением: запись в файл всё равно сериализуется
func Open(ctx context.Context, opts Options) (*sql.DB, sqlbuilder.Dialect, error) {
	var (
		db      *sql.DB
		dialect sqlbuilder.Dialect
		err     error
	)

	switch opts.Driver {
	case DriverPostgres:
		dialect = sqlbuilder.Postgres
		db, err = sql.Open("postgres", opts.DSN)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrOpen, err)
		}
		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			db.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	case DriverSQLite:
		dialect = sqlbuilder.SQLite
		db, err = sql.Open("sqlite", SQLiteDSN(opts.DSN))
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrOpen, err)
		}
		db.SetMaxOpenConns(1)
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, opts.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("%w: ping: %v", ErrOpen, err)
	}

	return db, dialect, nil
}

// SQLiteDSN дополняет путь к файлу SQLite нужными параметрами:
// единый текстовый формат времени, ожидание блокировки и внешние ключи
func SQLiteDSN(path string) string {
	if path == "" {
		path = ":memory:"
	}

	base, rawQuery, _ := strings.Cut(path, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}

	if query.Get("_time_format") == "" {
		query.Set("_time_format", "sqlite")
	}
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", sqliteBusyTimeoutMs))
	query.Add("_pragma", "foreign_keys(1)")

	return base + "?" + query.Encode()
}
