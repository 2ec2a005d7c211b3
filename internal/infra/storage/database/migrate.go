package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// Migrate применяет ещё не применённые миграции диалекта по порядку версий
// Каждая миграция выполняется в своей транзакции и фиксируется в schema_migrations
func Migrate(ctx context.Context, db *sql.DB, dialect sqlbuilder.Dialect, log Logger) error {
	builder := sqlbuilder.New(dialect)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    VARCHAR(64) PRIMARY KEY,
		applied_at VARCHAR(64) NOT NULL
	)`); err != nil {
		return fmt.Errorf("%w: create schema_migrations: %v", ErrMigrate, err)
	}

	dir := path.Join("migrations", string(dialect))
	entries, err := fs.ReadDir(migrationFiles, dir)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrMigrate, dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		version := strings.TrimSuffix(name, ".sql")

		applied, err := isApplied(ctx, db, builder, version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		content, err := migrationFiles.ReadFile(path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("%w: read %s: %v", ErrMigrate, name, err)
		}

		if err := apply(ctx, db, builder, version, string(content)); err != nil {
			return err
		}
		if log != nil {
			log.Info("Migration %s applied", version)
		}
	}

	return nil
}

func isApplied(ctx context.Context, db *sql.DB, builder squirrel.StatementBuilderType, version string) (bool, error) {
	query, args, err := builder.Select("COUNT(*)").
		From("schema_migrations").
		Where("version = ?", version).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: build query: %v", ErrMigrate, err)
	}

	var count int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: check version %s: %v", ErrMigrate, version, err)
	}
	return count > 0, nil
}

func apply(ctx context.Context, db *sql.DB, builder squirrel.StatementBuilderType, version, content string) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin %s: %v", ErrMigrate, version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range splitStatements(content) {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %s statement %d: %v", ErrMigrate, version, i+1, err)
		}
	}

	query, args, err := builder.Insert("schema_migrations").
		Columns("version", "applied_at").
		Values(version, time.Now().UTC().Format(time.RFC3339)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: build insert: %v", ErrMigrate, err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: record %s: %v", ErrMigrate, version, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit %s: %v", ErrMigrate, version, err)
	}
	return nil
}

// splitStatements делит файл миграции на отдельные запросы по ";" без строк-комментариев
func splitStatements(content string) []string {
	statements := make([]string, 0)
	for _, raw := range strings.Split(content, ";") {
		lines := make([]string, 0)
		for _, line := range strings.Split(raw, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
