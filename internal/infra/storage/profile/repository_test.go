package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/testfixtures"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
)

func TestRepository_UpsertMerges(t *testing.T) {
	repo := NewRepository(testfixtures.NewSQLite(t), sqlbuilder.SQLite)
	ctx := context.Background()
	first := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

	_, err := repo.Upsert(ctx, &domain.CustomerProfile{
		Email:               "Ana@Example.com",
		Name:                "Ana",
		Phone:               ptr.Ptr("+34 600"),
		SessionTypes:        []domain.SessionType{domain.SessionOnline},
		PreferredDays:       []time.Weekday{time.Monday},
		PreferredTimeRanges: []string{"09:00-10:00"},
		ReminderOptIn:       true,
		Locale:              "es",
		LastBookingAt:       first,
	})
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, &domain.CustomerProfile{
		Email:               "ana@example.com",
		Name:                "Ana Ruiz",
		SessionTypes:        []domain.SessionType{domain.SessionPresencial, domain.SessionOnline},
		PreferredDays:       []time.Weekday{time.Wednesday, time.Monday},
		PreferredTimeRanges: []string{"16:00-17:00"},
		ReminderOptIn:       false,
		LastBookingAt:       first.Add(48 * time.Hour),
	})
	require.NoError(t, err)

	got, err := repo.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, "Ana Ruiz", got.Name)
	assert.Equal(t, "+34 600", *got.Phone)
	assert.Equal(t, []domain.SessionType{domain.SessionOnline, domain.SessionPresencial}, got.SessionTypes)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, got.PreferredDays)
	assert.Equal(t, []string{"09:00-10:00", "16:00-17:00"}, got.PreferredTimeRanges)
	assert.False(t, got.ReminderOptIn)
	assert.Equal(t, "es", got.Locale)
	assert.True(t, first.Add(48*time.Hour).Equal(got.LastBookingAt))
}

func TestRepository_GetByEmailNotFound(t *testing.T) {
	repo := NewRepository(testfixtures.NewSQLite(t), sqlbuilder.SQLite)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
