package create_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifier"
	"github.com/m04kA/SMC-AppointmentService/internal/testfixtures"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type staticSchedule struct{ config *domain.ScheduleConfig }

func (s staticSchedule) GetScheduleConfig(context.Context) *domain.ScheduleConfig { return s.config }

type fakeProfiles struct {
	mu       sync.Mutex
	profiles []*domain.CustomerProfile
	err      error
}

func (f *fakeProfiles) Upsert(_ context.Context, p *domain.CustomerProfile) (*domain.CustomerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.profiles = append(f.profiles, p)
	return p, nil
}

type fakeReminders struct {
	mu        sync.Mutex
	reminders []*domain.ReminderLog
	err       error
}

func (f *fakeReminders) CreateBatch(_ context.Context, reminders []*domain.ReminderLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reminders = append(f.reminders, reminders...)
	return nil
}

type fakeEngagements struct {
	mu     sync.Mutex
	seeded []uuid.UUID
}

func (f *fakeEngagements) Seed(_ context.Context, bookingID uuid.UUID, _ domain.EngagementStage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeded = append(f.seeded, bookingID)
	return nil
}

type fakeNotifier struct{ err error }

func (f fakeNotifier) NotifyConfirmed(context.Context, *domain.Booking) error { return f.err }

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	failures []string
}

func (m *fakeMetrics) IncBooking(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[outcome]++
}

func (m *fakeMetrics) IncSideEffectFailure(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, name)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// 2025-11-03 - понедельник
var monday = time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

type fixture struct {
	uc          *UseCase
	repo        *bookingRepo.Repository
	profiles    *fakeProfiles
	reminders   *fakeReminders
	engagements *fakeEngagements
	metrics     *fakeMetrics
}

func workdayConfig() *domain.ScheduleConfig {
	return &domain.ScheduleConfig{
		WorkingDays: domain.DefaultWorkingDays,
		SlotMinutes: 60,
		Periods:     []domain.Period{{StartMinutes: 9 * 60, EndMinutes: 17 * 60}},
		Location:    time.UTC,
		Source:      domain.SourceEnv,
	}
}

func newFixture(t *testing.T, cfg *domain.ScheduleConfig, now time.Time, notify Notifier) *fixture {
	t.Helper()

	f := &fixture{
		repo:        bookingRepo.NewRepository(testfixtures.NewSQLite(t), sqlbuilder.SQLite),
		profiles:    &fakeProfiles{},
		reminders:   &fakeReminders{},
		engagements: &fakeEngagements{},
		metrics:     &fakeMetrics{},
	}
	if notify == nil {
		notify = fakeNotifier{}
	}
	f.uc = NewUseCase(staticSchedule{cfg}, f.repo, f.profiles, f.reminders, f.engagements,
		notify, nil, f.metrics, logger.NewNop())
	f.uc.timeProvider = fixedTime{now: now}
	return f
}

func validRequest() *Request {
	return &Request{
		Name:        "Ana García",
		Email:       "Ana@Example.com",
		Date:        monday,
		Time:        types.TimeString("09:00"),
		SessionType: domain.SessionOnline,
		Locale:      "es",
	}
}

func TestExecute_Success(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, workdayConfig(), now, nil)

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	b := resp.Booking
	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, "ana@example.com", b.CustomerEmail)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	assert.Equal(t, time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC), b.StartTime)
	assert.Equal(t, time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC), b.EndTime)
	assert.Equal(t, "UTC", b.TimeZone)

	require.Len(t, resp.SideEffects, 4)
	for _, e := range resp.SideEffects {
		assert.NoError(t, e.Err, e.Name)
	}

	require.Len(t, f.profiles.profiles, 1)
	assert.Equal(t, []string{"09:00-10:00"}, f.profiles.profiles[0].PreferredTimeRanges)
	assert.Equal(t, []time.Weekday{time.Monday}, f.profiles.profiles[0].PreferredDays)

	require.Len(t, f.reminders.reminders, 2)
	assert.Equal(t, "24h", f.reminders.reminders[0].Kind)
	assert.Equal(t, "2h", f.reminders.reminders[1].Kind)
	assert.Equal(t, []uuid.UUID{b.ID}, f.engagements.seeded)
	assert.Equal(t, 1, f.metrics.outcomes[outcomeCommitted])

	booked, err := f.repo.ListBookedTimes(context.Background(), monday, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"09:00"}, booked)
}

func TestExecute_RequestTimeZone(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, workdayConfig(), now, nil)

	req := validRequest()
	req.TimeZone = "Europe/Madrid"

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC), resp.Booking.StartTime)
	assert.Equal(t, "Europe/Madrid", resp.Booking.TimeZone)
}

func TestExecute_ConcurrentRequestsForSameSlot(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, workdayConfig(), now, nil)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.uc.Execute(context.Background(), validRequest())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotAlreadyBooked):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, attempts-1, f.metrics.outcomes[outcomeConflict])
}

func TestExecute_MissingEmailLeavesLedgerUnchanged(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, workdayConfig(), now, nil)

	req := validRequest()
	req.Email = ""

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	booked, err := f.repo.ListBookedTimes(context.Background(), monday, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, booked)
	assert.Empty(t, f.profiles.profiles)
	assert.Equal(t, 1, f.metrics.outcomes[outcomeRejected])
}

func TestExecute_ValidationErrors(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, workdayConfig(), now, nil)

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "empty name", mutate: func(r *Request) { r.Name = "  " }},
		{name: "bad email", mutate: func(r *Request) { r.Email = "not-an-email" }},
		{name: "zero date", mutate: func(r *Request) { r.Date = time.Time{} }},
		{name: "bad time", mutate: func(r *Request) { r.Time = "9am" }},
		{name: "unknown session", mutate: func(r *Request) { r.SessionType = "phone" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_BusinessRules(t *testing.T) {
	now := time.Date(2025, 11, 3, 10, 30, 0, 0, time.UTC)

	cfg := workdayConfig()
	cfg.MinAdvanceHours = 2
	cfg.MaxAdvanceDays = 30

	tests := []struct {
		name string
		date time.Time
		time types.TimeString
		want error
	}{
		{name: "saturday", date: time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC), time: "09:00", want: ErrNonWorkingDay},
		{name: "not aligned", date: monday.AddDate(0, 0, 1), time: "09:30", want: ErrInvalidTimeSlot},
		{name: "outside hours", date: monday.AddDate(0, 0, 1), time: "17:00", want: ErrInvalidTimeSlot},
		{name: "in the past", date: monday, time: "09:00", want: ErrSlotInPast},
		{name: "too late", date: monday, time: "12:00", want: ErrTooLateToBook},
		{name: "too far", date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), time: "09:00", want: ErrDateTooFarInFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, cfg, now, nil)
			req := validRequest()
			req.Date = tt.date
			req.Time = tt.time

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExecute_SideEffectFailuresDoNotFailBooking(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, workdayConfig(), now, fakeNotifier{err: errors.New("webhook down")})
	f.profiles.err = errors.New("profiles table locked")
	f.reminders.err = errors.New("reminders table locked")

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Booking)

	failed := make(map[string]bool)
	for _, e := range resp.SideEffects {
		failed[e.Name] = e.Err != nil
	}
	assert.True(t, failed[SideEffectProfile])
	assert.True(t, failed[SideEffectReminders])
	assert.False(t, failed[SideEffectEngagement])
	assert.True(t, failed[SideEffectNotify])
	assert.ElementsMatch(t, []string{SideEffectProfile, SideEffectReminders, SideEffectNotify}, f.metrics.failures)

	_, err = f.repo.GetByID(context.Background(), resp.Booking.ID)
	assert.NoError(t, err)
}

func TestExecute_DisabledNotifierIsNotAFailure(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, workdayConfig(), now, fakeNotifier{err: notifier.ErrDisabled})

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Empty(t, f.metrics.failures)
	assert.NoError(t, resp.SideEffects[3].Err)
}

func TestExecute_ReminderOptOut(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, workdayConfig(), now, nil)

	req := validRequest()
	optIn := false
	req.ReminderOptIn = &optIn

	_, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, f.reminders.reminders)
	require.Len(t, f.profiles.profiles, 1)
	assert.False(t, f.profiles.profiles[0].ReminderOptIn)
}

func TestBuildReminders_SkipsPastOffsets(t *testing.T) {
	booking := &domain.Booking{
		ID:        uuid.New(),
		StartTime: time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC),
	}
	now := time.Date(2025, 11, 3, 6, 0, 0, 0, time.UTC)

	got := buildReminders(booking, []time.Duration{24 * time.Hour, 2 * time.Hour, 0}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "2h", got[0].Kind)
	assert.Equal(t, time.Date(2025, 11, 3, 7, 0, 0, 0, time.UTC), got[0].ScheduledFor)
}

func TestReminderKind(t *testing.T) {
	assert.Equal(t, "24h", ReminderKind(24*time.Hour))
	assert.Equal(t, "30m", ReminderKind(30*time.Minute))
	assert.Equal(t, "1h30m", ReminderKind(90*time.Minute))
}
