package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/settingsservice"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeSettings struct {
	hours       *settingsservice.WorkingHours
	settings    *settingsservice.BookingSettings
	hoursErr    error
	settingsErr error
	calls       atomic.Int32
}

func (f *fakeSettings) GetWorkingHours(ctx context.Context) (*settingsservice.WorkingHours, error) {
	f.calls.Add(1)
	return f.hours, f.hoursErr
}

func (f *fakeSettings) GetBookingSettings(ctx context.Context) (*settingsservice.BookingSettings, error) {
	return f.settings, f.settingsErr
}

type fakeMetrics struct {
	mu      sync.Mutex
	results []string
}

func (m *fakeMetrics) IncScheduleConfig(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testEnv() EnvDefaults {
	return EnvDefaults{
		WorkingDays:  "MON-FRI",
		WorkingHours: "09:00-17:00",
		SlotMinutes:  60,
	}
}

func newTestService(client SettingsClient) (*Service, *fixedClock, *fakeMetrics) {
	clock := &fixedClock{now: time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)}
	m := &fakeMetrics{}
	svc := NewService(client, testEnv(), time.UTC, 5*time.Minute, m, logger.NewNop())
	svc.timeProvider = clock
	return svc, clock, m
}

func TestGetScheduleConfig_Remote(t *testing.T) {
	client := &fakeSettings{
		hours: &settingsservice.WorkingHours{
			Start: "10:00",
			End:   "14:00",
			Days:  []string{"Monday", "Wednesday", "Friday", "Funday"},
		},
		settings: &settingsservice.BookingSettings{SlotMinutes: 30, MinAdvanceHours: 2, MaxAdvanceDays: 14, CancellationHours: 24},
	}
	svc, _, _ := newTestService(client)

	cfg := svc.GetScheduleConfig(context.Background())

	assert.Equal(t, domain.SourceRemote, cfg.Source)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, cfg.WorkingDays)
	assert.Equal(t, []domain.Period{{StartMinutes: 600, EndMinutes: 840}}, cfg.Periods)
	assert.Equal(t, 30, cfg.SlotMinutes)
	assert.Equal(t, 2, cfg.MinAdvanceHours)
	assert.Equal(t, 14, cfg.MaxAdvanceDays)
	assert.Equal(t, 24, cfg.CancellationHours)
}

func TestGetScheduleConfig_RangesOverrideStartEnd(t *testing.T) {
	client := &fakeSettings{
		hours: &settingsservice.WorkingHours{
			Start:  "09:00",
			End:    "17:00",
			Days:   []string{"MON-FRI"},
			Ranges: "09:00-12:00; 14:00-18:00, 19:00-19:00, junk",
		},
		settings: &settingsservice.BookingSettings{SlotMinutes: 2},
	}
	svc, _, _ := newTestService(client)

	cfg := svc.GetScheduleConfig(context.Background())

	assert.Equal(t, []domain.Period{
		{StartMinutes: 540, EndMinutes: 720},
		{StartMinutes: 840, EndMinutes: 1080},
	}, cfg.Periods)
	assert.Equal(t, domain.MinSlotMinutes, cfg.SlotMinutes)
	assert.Len(t, cfg.WorkingDays, 5)
}

func TestGetScheduleConfig_DefaultsForEmptyRemote(t *testing.T) {
	client := &fakeSettings{
		hours:    &settingsservice.WorkingHours{Start: "18:00", End: "09:00", Days: []string{"nope"}},
		settings: &settingsservice.BookingSettings{},
	}
	svc, _, _ := newTestService(client)

	cfg := svc.GetScheduleConfig(context.Background())

	assert.Equal(t, domain.SourceRemote, cfg.Source)
	assert.Equal(t, domain.DefaultWorkingDays, cfg.WorkingDays)
	assert.Equal(t, []domain.Period{{StartMinutes: domain.DefaultPeriodStartMinutes, EndMinutes: domain.DefaultPeriodEndMinutes}}, cfg.Periods)
	assert.Equal(t, domain.DefaultSlotMinutes, cfg.SlotMinutes)
}

func TestGetScheduleConfig_FallbackToEnv(t *testing.T) {
	client := &fakeSettings{
		hours:       &settingsservice.WorkingHours{Start: "10:00", End: "11:00", Days: []string{"Sunday"}},
		settingsErr: settingsservice.ErrUnavailable,
	}
	svc, _, m := newTestService(client)

	cfg := svc.GetScheduleConfig(context.Background())

	assert.Equal(t, domain.SourceEnv, cfg.Source)
	assert.Equal(t, domain.DefaultWorkingDays, cfg.WorkingDays)
	assert.Equal(t, []domain.Period{{StartMinutes: 540, EndMinutes: 1020}}, cfg.Periods)
	assert.Equal(t, []string{"env"}, m.results)
}

func TestGetScheduleConfig_CachedWithinTTL(t *testing.T) {
	client := &fakeSettings{
		hours:    &settingsservice.WorkingHours{Start: "09:00", End: "12:00", Days: []string{"Monday"}},
		settings: &settingsservice.BookingSettings{SlotMinutes: 60},
	}
	svc, clock, m := newTestService(client)

	first := svc.GetScheduleConfig(context.Background())
	clock.Advance(4 * time.Minute)
	second := svc.GetScheduleConfig(context.Background())

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), client.calls.Load())
	assert.Equal(t, []string{"remote", "hit"}, m.results)

	clock.Advance(time.Minute)
	svc.GetScheduleConfig(context.Background())
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestGetScheduleConfig_ConcurrentCallersShareFetch(t *testing.T) {
	client := &fakeSettings{
		hours:    &settingsservice.WorkingHours{Start: "09:00", End: "12:00", Days: []string{"Monday"}},
		settings: &settingsservice.BookingSettings{SlotMinutes: 60},
	}
	svc, _, _ := newTestService(client)

	var wg sync.WaitGroup
	configs := make([]*domain.ScheduleConfig, 20)
	for i := range configs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			configs[i] = svc.GetScheduleConfig(context.Background())
		}(i)
	}
	wg.Wait()

	for _, cfg := range configs {
		require.NotNil(t, cfg)
		assert.Equal(t, configs[0], cfg)
	}
	assert.LessOrEqual(t, client.calls.Load(), int32(20))
	assert.GreaterOrEqual(t, client.calls.Load(), int32(1))
}

func TestGetScheduleConfig_CancelledCallerStillRefreshes(t *testing.T) {
	client := &fakeSettings{
		hours:    &settingsservice.WorkingHours{Start: "09:00", End: "12:00", Days: []string{"Monday"}},
		settings: &settingsservice.BookingSettings{SlotMinutes: 60},
	}
	svc, _, _ := newTestService(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := svc.GetScheduleConfig(ctx)
	assert.Equal(t, domain.SourceRemote, cfg.Source)
}

func TestGetScheduleConfigSync(t *testing.T) {
	client := &fakeSettings{hoursErr: errors.New("must not be called")}
	svc, _, _ := newTestService(client)

	cfg := svc.GetScheduleConfigSync()
	assert.Equal(t, domain.SourceEnv, cfg.Source)
	assert.Equal(t, int32(0), client.calls.Load())

	client.hoursErr = nil
	client.hours = &settingsservice.WorkingHours{Start: "09:00", End: "12:00", Days: []string{"Monday"}}
	client.settings = &settingsservice.BookingSettings{SlotMinutes: 60}
	remote := svc.GetScheduleConfig(context.Background())

	assert.Equal(t, remote, svc.GetScheduleConfigSync())
	assert.Equal(t, int32(1), client.calls.Load())

	svc.Invalidate()
	assert.Equal(t, domain.SourceEnv, svc.GetScheduleConfigSync().Source)
}

func TestGetScheduleConfig_NilClientUsesEnv(t *testing.T) {
	svc := NewService(nil, testEnv(), nil, 0, &fakeMetrics{}, logger.NewNop())

	cfg := svc.GetScheduleConfig(context.Background())

	assert.Equal(t, domain.SourceEnv, cfg.Source)
	assert.Equal(t, time.UTC, cfg.Location)
}
