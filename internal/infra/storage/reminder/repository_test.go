package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/testfixtures"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
)

func seedBooking(t *testing.T, repo *booking.Repository, start time.Time) *domain.Booking {
	t.Helper()
	b, err := repo.TryReserve(context.Background(), &domain.Booking{
		CustomerName:  "Ana",
		CustomerEmail: "ana@example.com",
		SessionType:   domain.SessionOnline,
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		TimeZone:      "UTC",
	})
	require.NoError(t, err)
	return b
}

func TestRepository_DueLifecycle(t *testing.T) {
	db := testfixtures.NewSQLite(t)
	bookings := booking.NewRepository(db, sqlbuilder.SQLite)
	repo := NewRepository(db, sqlbuilder.SQLite)
	ctx := context.Background()

	start := time.Date(2025, 11, 4, 9, 0, 0, 0, time.UTC)
	b := seedBooking(t, bookings, start)

	reminders := []*domain.ReminderLog{
		{BookingID: b.ID, Kind: "24h", ScheduledFor: start.Add(-24 * time.Hour)},
		{BookingID: b.ID, Kind: "2h", ScheduledFor: start.Add(-2 * time.Hour)},
	}
	require.NoError(t, repo.CreateBatch(ctx, reminders))
	// Повтор не создаёт дубликатов
	require.NoError(t, repo.CreateBatch(ctx, []*domain.ReminderLog{{BookingID: b.ID, Kind: "24h", ScheduledFor: start}}))

	all, err := repo.ListByBooking(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "24h", all[0].Kind)
	assert.Equal(t, domain.ReminderPending, all[0].Status)

	due, err := repo.ListDue(ctx, start.Add(-23*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "24h", due[0].Reminder.Kind)
	assert.Equal(t, b.ID, due[0].Booking.ID)
	assert.True(t, start.Equal(due[0].Booking.StartTime))

	sentAt := start.Add(-23 * time.Hour)
	require.NoError(t, repo.MarkSent(ctx, due[0].Reminder.ID, sentAt))
	require.NoError(t, repo.MarkFailed(ctx, reminders[1].ID, "webhook down"))

	due, err = repo.ListDue(ctx, start, 0)
	require.NoError(t, err)
	assert.Empty(t, due)

	all, err = repo.ListByBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReminderSent, all[0].Status)
	require.NotNil(t, all[0].SentAt)
	assert.True(t, sentAt.Equal(*all[0].SentAt))
	assert.Equal(t, domain.ReminderFailed, all[1].Status)
	assert.Equal(t, "webhook down", *all[1].Error)
}

func TestRepository_CancelPending(t *testing.T) {
	db := testfixtures.NewSQLite(t)
	bookings := booking.NewRepository(db, sqlbuilder.SQLite)
	repo := NewRepository(db, sqlbuilder.SQLite)
	ctx := context.Background()

	start := time.Date(2025, 11, 4, 9, 0, 0, 0, time.UTC)
	b := seedBooking(t, bookings, start)
	require.NoError(t, repo.CreateBatch(ctx, []*domain.ReminderLog{
		{BookingID: b.ID, Kind: "24h", ScheduledFor: start.Add(-24 * time.Hour)},
		{BookingID: b.ID, Kind: "2h", ScheduledFor: start.Add(-2 * time.Hour)},
	}))

	n, err := repo.CancelPending(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	due, err := repo.ListDue(ctx, start, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	assert.ErrorIs(t, repo.MarkFailed(ctx, b.ID, "x"), ErrReminderNotFound)
}
