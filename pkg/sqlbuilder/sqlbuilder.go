package sqlbuilder

import (
	"github.com/Masterminds/squirrel"
)

// Dialect диалект SQL хранилища
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// New возвращает построитель запросов с плейсхолдерами для диалекта:
// $1, $2 для Postgres и ? для SQLite
func New(dialect Dialect) squirrel.StatementBuilderType {
	if dialect == SQLite {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
