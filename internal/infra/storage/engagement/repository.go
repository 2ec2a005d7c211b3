package engagement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const table = "engagements"

// Repository репозиторий записей жизненного цикла бронирований
type Repository struct {
	db      dbmetrics.DBExecutor
	builder squirrel.StatementBuilderType
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db dbmetrics.DBExecutor, dialect sqlbuilder.Dialect) *Repository {
	return &Repository{db: db, builder: sqlbuilder.New(dialect)}
}

// Seed создаёт запись для бронирования; если запись уже есть, ничего не меняет
func (r *Repository) Seed(ctx context.Context, bookingID uuid.UUID, stage domain.EngagementStage) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	now := time.Now().UTC().Truncate(time.Second)

	query, args, err := r.builder.Insert(table).
		Columns("id", "booking_id", "stage", "created_at", "updated_at").
		Values(uuid.New().String(), bookingID.String(), string(stage), now, now).
		Suffix("ON CONFLICT (booking_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Seed - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Seed - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// UpdateStage переводит запись бронирования на новый этап
func (r *Repository) UpdateStage(ctx context.Context, bookingID uuid.UUID, stage domain.EngagementStage) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.builder.Update(table).
		Set("stage", string(stage)).
		Set("updated_at", time.Now().UTC().Truncate(time.Second)).
		Where(squirrel.Eq{"booking_id": bookingID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStage - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStage - execute update: %v", ErrExecQuery, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStage - get rows affected: %v", ErrExecQuery, err)
	}
	if n == 0 {
		return ErrEngagementNotFound
	}

	return nil
}

// GetByBookingID получает запись по ID бронирования
func (r *Repository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*domain.Engagement, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.builder.Select("id", "booking_id", "stage", "created_at", "updated_at").
		From(table).
		Where(squirrel.Eq{"booking_id": bookingID.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		e                    domain.Engagement
		id, bID, stage       string
		createdAt, updatedAt types.Timestamp
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(&id, &bID, &stage, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEngagementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - scan row: %v", ErrScanRow, err)
	}

	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - parse id: %v", ErrScanRow, err)
	}
	if e.BookingID, err = uuid.Parse(bID); err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - parse booking id: %v", ErrScanRow, err)
	}
	e.Stage = domain.EngagementStage(stage)
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time

	return &e, nil
}
