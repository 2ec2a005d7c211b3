package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const table = "customer_profiles"

var columns = []string{
	"email",
	"name",
	"phone",
	"session_types",
	"preferred_days",
	"preferred_time_ranges",
	"reminder_opt_in",
	"locale",
	"notes",
	"last_booking_at",
	"created_at",
	"updated_at",
}

// upsertSuffix одинаково работает в Postgres и SQLite
const upsertSuffix = `ON CONFLICT (email) DO UPDATE SET
	name = excluded.name,
	phone = excluded.phone,
	session_types = excluded.session_types,
	preferred_days = excluded.preferred_days,
	preferred_time_ranges = excluded.preferred_time_ranges,
	reminder_opt_in = excluded.reminder_opt_in,
	locale = excluded.locale,
	notes = excluded.notes,
	last_booking_at = excluded.last_booking_at,
	updated_at = excluded.updated_at`

// Repository репозиторий профилей клиентов
type Repository struct {
	db      dbmetrics.DBExecutor
	builder squirrel.StatementBuilderType
}

// NewRepository создает новый экземпляр репозитория профилей
func NewRepository(db dbmetrics.DBExecutor, dialect sqlbuilder.Dialect) *Repository {
	return &Repository{db: db, builder: sqlbuilder.New(dialect)}
}

// GetByEmail получает профиль по email (регистр не важен)
func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.CustomerProfile, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.builder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"email": normalizeEmail(email)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByEmail - build select query: %v", ErrBuildQuery, err)
	}

	profile, err := scanProfile(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByEmail - scan profile: %v", ErrScanRow, err)
	}

	return profile, nil
}

// Upsert создаёт или обновляет профиль
// Типы сессий, предпочитаемые дни и интервалы объединяются с сохранёнными,
// остальные поля берутся из последнего бронирования
func (r *Repository) Upsert(ctx context.Context, incoming *domain.CustomerProfile) (*domain.CustomerProfile, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	now := time.Now().UTC().Truncate(time.Second)
	merged := *incoming
	merged.Email = normalizeEmail(incoming.Email)
	merged.CreatedAt = now
	merged.UpdatedAt = now

	existing, err := r.GetByEmail(ctx, merged.Email)
	switch {
	case err == nil:
		merged = merge(existing, &merged)
		merged.UpdatedAt = now
	case errors.Is(err, ErrProfileNotFound):
	default:
		return nil, err
	}

	sessionTypes, err := json.Marshal(merged.SessionTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - encode session types: %v", ErrBuildQuery, err)
	}
	days, err := json.Marshal(merged.PreferredDays)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - encode preferred days: %v", ErrBuildQuery, err)
	}
	ranges, err := json.Marshal(merged.PreferredTimeRanges)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - encode time ranges: %v", ErrBuildQuery, err)
	}

	query, args, err := r.builder.Insert(table).
		Columns(columns...).
		Values(
			merged.Email,
			merged.Name,
			merged.Phone,
			string(sessionTypes),
			string(days),
			string(ranges),
			merged.ReminderOptIn,
			merged.Locale,
			merged.Notes,
			merged.LastBookingAt.UTC().Truncate(time.Second),
			merged.CreatedAt,
			merged.UpdatedAt,
		).
		Suffix(upsertSuffix).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	return &merged, nil
}

// merge объединяет сохранённый профиль с данными нового бронирования
func merge(existing, incoming *domain.CustomerProfile) domain.CustomerProfile {
	result := *incoming
	result.CreatedAt = existing.CreatedAt

	result.SessionTypes = unionSessionTypes(existing.SessionTypes, incoming.SessionTypes)
	result.PreferredDays = unionDays(existing.PreferredDays, incoming.PreferredDays)
	result.PreferredTimeRanges = unionStrings(existing.PreferredTimeRanges, incoming.PreferredTimeRanges)

	if result.Name == "" {
		result.Name = existing.Name
	}
	if result.Phone == nil {
		result.Phone = existing.Phone
	}
	if result.Locale == "" {
		result.Locale = existing.Locale
	}
	if result.Notes == nil {
		result.Notes = existing.Notes
	}
	if result.LastBookingAt.Before(existing.LastBookingAt) {
		result.LastBookingAt = existing.LastBookingAt
	}

	return result
}

func unionSessionTypes(a, b []domain.SessionType) []domain.SessionType {
	seen := make(map[domain.SessionType]struct{})
	out := make([]domain.SessionType, 0, len(a)+len(b))
	for _, s := range append(append([]domain.SessionType{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func unionDays(a, b []time.Weekday) []time.Weekday {
	seen := make(map[time.Weekday]struct{})
	out := make([]time.Weekday, 0, len(a)+len(b))
	for _, d := range append(append([]time.Weekday{}, a...), b...) {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*domain.CustomerProfile, error) {
	var (
		p                                   domain.CustomerProfile
		phone, notes                        sql.NullString
		sessionTypes, days, ranges          string
		lastBookingAt, createdAt, updatedAt types.Timestamp
	)

	err := row.Scan(
		&p.Email,
		&p.Name,
		&phone,
		&sessionTypes,
		&days,
		&ranges,
		&p.ReminderOptIn,
		&p.Locale,
		&notes,
		&lastBookingAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		p.Phone = &phone.String
	}
	if notes.Valid {
		p.Notes = &notes.String
	}
	p.LastBookingAt = lastBookingAt.Time
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	if err := json.Unmarshal([]byte(sessionTypes), &p.SessionTypes); err != nil {
		return nil, fmt.Errorf("decode session types: %v", err)
	}
	if err := json.Unmarshal([]byte(days), &p.PreferredDays); err != nil {
		return nil, fmt.Errorf("decode preferred days: %v", err)
	}
	if err := json.Unmarshal([]byte(ranges), &p.PreferredTimeRanges); err != nil {
		return nil, fmt.Errorf("decode time ranges: %v", err)
	}

	return &p, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
