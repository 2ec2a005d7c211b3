package booking

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
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/database"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const table = "bookings"

var columns = []string{
	"id",
	"customer_name",
	"customer_email",
	"customer_phone",
	"session_type",
	"start_time",
	"end_time",
	"time_zone",
	"status",
	"metadata",
	"cancellation_reason",
	"cancelled_at",
	"last_reminder_at",
	"created_at",
	"updated_at",
}

// Repository журнал бронирований
// Уникальность активного бронирования на время начала обеспечивает
// частичный уникальный индекс bookings_active_start_uidx, а не проверка в приложении
type Repository struct {
	db      DBExecutor
	builder squirrel.StatementBuilderType
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor, dialect sqlbuilder.Dialect) *Repository {
	return &Repository{db: db, builder: sqlbuilder.New(dialect)}
}

// TryReserve атомарно резервирует слот: один INSERT, конфликт определяет БД
// Возвращает ErrSlotAlreadyBooked, если на startTime уже есть неотменённое бронирование.
// ID, статус и метки времени заполняются здесь; время приводится к UTC с точностью до секунды.
func (r *Repository) TryReserve(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Second)
	booking.StartTime = normalize(booking.StartTime)
	booking.EndTime = normalize(booking.EndTime)
	booking.CustomerEmail = strings.ToLower(strings.TrimSpace(booking.CustomerEmail))
	booking.Status = domain.StatusConfirmed
	booking.CreatedAt = now
	booking.UpdatedAt = now

	metadata, err := encodeMetadata(booking.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: TryReserve - encode metadata: %v", ErrBuildQuery, err)
	}

	query, args, err := r.builder.Insert(table).
		Columns(columns...).
		Values(
			booking.ID.String(),
			booking.CustomerName,
			booking.CustomerEmail,
			booking.CustomerPhone,
			string(booking.SessionType),
			booking.StartTime,
			booking.EndTime,
			booking.TimeZone,
			string(booking.Status),
			metadata,
			nil,
			nil,
			nil,
			booking.CreatedAt,
			booking.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: TryReserve - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrSlotAlreadyBooked, booking.StartTime.Format(time.RFC3339))
		}
		return nil, fmt.Errorf("%w: TryReserve - execute insert: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.builder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByEmail получает бронирования клиента, сначала самые поздние
func (r *Repository) GetByEmail(ctx context.Context, email string) ([]*domain.Booking, error) {
	query := r.builder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"customer_email": strings.ToLower(strings.TrimSpace(email))}).
		OrderBy("start_time DESC")

	return r.list(ctx, "GetByEmail", query)
}

// ListActiveByRange получает неотменённые бронирования с началом в [from, to), по возрастанию
func (r *Repository) ListActiveByRange(ctx context.Context, from, to time.Time) ([]*domain.Booking, error) {
	query := r.builder.Select(columns...).
		From(table).
		Where(squirrel.GtOrEq{"start_time": normalize(from)}).
		Where(squirrel.Lt{"start_time": normalize(to)}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		OrderBy("start_time ASC")

	return r.list(ctx, "ListActiveByRange", query)
}

// ListBookedTimes возвращает занятые времена начала ("HH:MM" в зоне loc) на дату date
// Значения уникальны и отсортированы
func (r *Repository) ListBookedTimes(ctx context.Context, date time.Time, loc *time.Location) ([]types.TimeString, error) {
	from, to := dayBounds(date, loc)

	bookings, err := r.ListActiveByRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	seen := make(map[types.TimeString]struct{}, len(bookings))
	times := make([]types.TimeString, 0, len(bookings))
	for _, b := range bookings {
		t := types.NewTimeString(b.StartTime.In(loc))
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].IsBefore(times[j]) })

	return times, nil
}

// IsSlotBooked проверяет, есть ли неотменённое бронирование ровно на startTime
func (r *Repository) IsSlotBooked(ctx context.Context, startTime time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.builder.Select("COUNT(*)").
		From(table).
		Where(squirrel.Eq{"start_time": normalize(startTime)}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: IsSlotBooked - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: IsSlotBooked - scan count: %v", ErrScanRow, err)
	}

	return count > 0, nil
}

// Cancel переводит подтверждённое бронирование в статус cancelled
// Физически бронирования не удаляются; освобождённое время снова доступно благодаря частичному индексу
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID, reason *string, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	at = normalize(at)

	query, args, err := r.builder.Update(table).
		Set("status", string(domain.StatusCancelled)).
		Set("cancellation_reason", reason).
		Set("cancelled_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id.String()}).
		Where(squirrel.Eq{"status": string(domain.StatusConfirmed)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	rowsAffected, err := r.exec(ctx, executor, query, args)
	if err != nil {
		return fmt.Errorf("%w: Cancel - %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		// Различаем "нет такого" и "уже не confirmed"
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrCannotCancel
	}

	return nil
}

// UpdateStatus обновляет статус неотменённого бронирования (confirmed, completed, no_show)
// Отменённое бронирование не меняется: ErrCannotUpdateStatus
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	if !domain.IsValidBookingStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.builder.Update(table).
		Set("status", string(status)).
		Set("updated_at", normalize(time.Now())).
		Where(squirrel.Eq{"id": id.String()}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	rowsAffected, err := r.exec(ctx, executor, query, args)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: UpdateStatus - slot is taken by another booking", ErrCannotUpdateStatus)
		}
		return fmt.Errorf("%w: UpdateStatus - %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrCannotUpdateStatus
	}

	return nil
}

// SetLastReminderAt фиксирует время последнего отправленного напоминания
func (r *Repository) SetLastReminderAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	at = normalize(at)

	query, args, err := r.builder.Update(table).
		Set("last_reminder_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetLastReminderAt - build update query: %v", ErrBuildQuery, err)
	}

	rowsAffected, err := r.exec(ctx, executor, query, args)
	if err != nil {
		return fmt.Errorf("%w: SetLastReminderAt - %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return bookings, nil
}

func (r *Repository) exec(ctx context.Context, executor DBExecutor, query string, args []interface{}) (int64, error) {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("execute: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %v", err)
	}

	return rowsAffected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		booking                     domain.Booking
		id                          string
		sessionType, status         string
		phone, reason               sql.NullString
		metadata                    sql.NullString
		startTime, endTime          types.Timestamp
		cancelledAt, lastReminderAt types.Timestamp
		createdAt, updatedAt        types.Timestamp
	)

	err := row.Scan(
		&id,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&phone,
		&sessionType,
		&startTime,
		&endTime,
		&booking.TimeZone,
		&status,
		&metadata,
		&reason,
		&cancelledAt,
		&lastReminderAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse id %q: %v", id, err)
	}
	booking.SessionType = domain.SessionType(sessionType)
	booking.Status = domain.BookingStatus(status)
	booking.StartTime = startTime.Time
	booking.EndTime = endTime.Time
	booking.CancelledAt = cancelledAt.Ptr()
	booking.LastReminderAt = lastReminderAt.Ptr()
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	if phone.Valid {
		booking.CustomerPhone = &phone.String
	}
	if reason.Valid {
		booking.CancellationReason = &reason.String
	}

	booking.Metadata, err = decodeMetadata(metadata.String)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

func encodeMetadata(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeMetadata(s string) (map[string]string, error) {
	m := make(map[string]string)
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %v", err)
	}
	return m, nil
}

// normalize приводит время к UTC с точностью до секунды, как оно хранится в БД
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// dayBounds возвращает границы суток date в зоне loc
func dayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}
