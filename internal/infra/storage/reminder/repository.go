package reminder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	table           = "reminder_logs"
	defaultDueLimit = 100
)

var columns = []string{
	"id",
	"booking_id",
	"kind",
	"scheduled_for",
	"status",
	"sent_at",
	"error",
	"created_at",
}

// Repository репозиторий журнала напоминаний
type Repository struct {
	db      dbmetrics.DBExecutor
	builder squirrel.StatementBuilderType
}

// NewRepository создает новый экземпляр репозитория напоминаний
func NewRepository(db dbmetrics.DBExecutor, dialect sqlbuilder.Dialect) *Repository {
	return &Repository{db: db, builder: sqlbuilder.New(dialect)}
}

// CreateBatch сохраняет напоминания одним запросом; повтор по (booking_id, kind) игнорируется
func (r *Repository) CreateBatch(ctx context.Context, reminders []*domain.ReminderLog) error {
	if len(reminders) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)
	now := time.Now().UTC().Truncate(time.Second)

	insert := r.builder.Insert(table).Columns(columns...)
	for _, rem := range reminders {
		if rem.ID == uuid.Nil {
			rem.ID = uuid.New()
		}
		if rem.Status == "" {
			rem.Status = domain.ReminderPending
		}
		rem.ScheduledFor = rem.ScheduledFor.UTC().Truncate(time.Second)
		rem.CreatedAt = now

		insert = insert.Values(
			rem.ID.String(),
			rem.BookingID.String(),
			rem.Kind,
			rem.ScheduledFor,
			string(rem.Status),
			nil,
			nil,
			rem.CreatedAt,
		)
	}

	query, args, err := insert.Suffix("ON CONFLICT (booking_id, kind) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreateBatch - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ListByBooking возвращает напоминания бронирования по возрастанию времени отправки
func (r *Repository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*domain.ReminderLog, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.builder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"booking_id": bookingID.String()}).
		OrderBy("scheduled_for ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	reminders := make([]*domain.ReminderLog, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByBooking - scan row: %v", ErrScanRow, err)
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - rows error: %v", ErrScanRow, err)
	}

	return reminders, nil
}

// ListDue возвращает ожидающие напоминания со временем отправки не позже now
// для бронирований, которые всё ещё подтверждены
func (r *Repository) ListDue(ctx context.Context, now time.Time, limit uint64) ([]*domain.DueReminder, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	if limit == 0 {
		limit = defaultDueLimit
	}

	query, args, err := r.builder.Select(
		"r.id", "r.booking_id", "r.kind", "r.scheduled_for", "r.status", "r.sent_at", "r.error", "r.created_at",
		"b.customer_name", "b.customer_email", "b.session_type", "b.start_time", "b.end_time", "b.time_zone", "b.metadata",
	).
		From(table + " r").
		Join("bookings b ON b.id = r.booking_id").
		Where(squirrel.Eq{"r.status": string(domain.ReminderPending)}).
		Where(squirrel.LtOrEq{"r.scheduled_for": now.UTC().Truncate(time.Second)}).
		Where(squirrel.Eq{"b.status": string(domain.StatusConfirmed)}).
		OrderBy("r.scheduled_for ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	due := make([]*domain.DueReminder, 0)
	for rows.Next() {
		item, err := scanDue(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListDue - scan row: %v", ErrScanRow, err)
		}
		due = append(due, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListDue - rows error: %v", ErrScanRow, err)
	}

	return due, nil
}

// MarkSent отмечает напоминание отправленным
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.update(ctx, "MarkSent", id, map[string]interface{}{
		"status":  string(domain.ReminderSent),
		"sent_at": at.UTC().Truncate(time.Second),
		"error":   nil,
	})
}

// MarkFailed отмечает напоминание неотправленным с текстом ошибки
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.update(ctx, "MarkFailed", id, map[string]interface{}{
		"status": string(domain.ReminderFailed),
		"error":  reason,
	})
}

// CancelPending отменяет все ожидающие напоминания бронирования
func (r *Repository) CancelPending(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.builder.Update(table).
		Set("status", string(domain.ReminderCancelled)).
		Where(squirrel.Eq{"booking_id": bookingID.String()}).
		Where(squirrel.Eq{"status": string(domain.ReminderPending)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CancelPending - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CancelPending - execute update: %v", ErrExecQuery, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CancelPending - get rows affected: %v", ErrExecQuery, err)
	}

	return n, nil
}

func (r *Repository) update(ctx context.Context, op string, id uuid.UUID, set map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.builder.Update(table).
		SetMap(set).
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if n == 0 {
		return ErrReminderNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReminder(row rowScanner) (*domain.ReminderLog, error) {
	var (
		rem                   domain.ReminderLog
		id, bookingID, status string
		errText               sql.NullString
		scheduledFor, sentAt  types.Timestamp
		createdAt             types.Timestamp
	)

	if err := row.Scan(&id, &bookingID, &rem.Kind, &scheduledFor, &status, &sentAt, &errText, &createdAt); err != nil {
		return nil, err
	}

	return fillReminder(&rem, id, bookingID, status, errText, scheduledFor, sentAt, createdAt)
}

func scanDue(row rowScanner) (*domain.DueReminder, error) {
	var (
		rem                   domain.ReminderLog
		b                     domain.Booking
		id, bookingID, status string
		errText               sql.NullString
		scheduledFor, sentAt  types.Timestamp
		createdAt             types.Timestamp
		sessionType, metadata string
		startTime, endTime    types.Timestamp
	)

	err := row.Scan(
		&id, &bookingID, &rem.Kind, &scheduledFor, &status, &sentAt, &errText, &createdAt,
		&b.CustomerName, &b.CustomerEmail, &sessionType, &startTime, &endTime, &b.TimeZone, &metadata,
	)
	if err != nil {
		return nil, err
	}

	if _, err := fillReminder(&rem, id, bookingID, status, errText, scheduledFor, sentAt, createdAt); err != nil {
		return nil, err
	}

	b.ID = rem.BookingID
	b.Status = domain.StatusConfirmed
	b.SessionType = domain.SessionType(sessionType)
	b.StartTime = startTime.Time
	b.EndTime = endTime.Time
	b.Metadata = make(map[string]string)
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &b.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %v", err)
		}
	}

	return &domain.DueReminder{Reminder: rem, Booking: b}, nil
}

func fillReminder(
	rem *domain.ReminderLog,
	id, bookingID, status string,
	errText sql.NullString,
	scheduledFor, sentAt, createdAt types.Timestamp,
) (*domain.ReminderLog, error) {
	var err error
	if rem.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id %q: %v", id, err)
	}
	if rem.BookingID, err = uuid.Parse(bookingID); err != nil {
		return nil, fmt.Errorf("parse booking id %q: %v", bookingID, err)
	}
	rem.Status = domain.ReminderStatus(status)
	rem.ScheduledFor = scheduledFor.Time
	rem.SentAt = sentAt.Ptr()
	rem.CreatedAt = createdAt.Time
	if errText.Valid {
		rem.Error = &errText.String
	}
	return rem, nil
}
