package schedule

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/settingsservice"
)

const defaultFetchTimeout = 5 * time.Second

// cacheEntry закэшированная конфигурация, заменяется только целиком
type cacheEntry struct {
	value     *domain.ScheduleConfig
	fetchedAt time.Time
}

// Service разрешает конфигурацию расписания: удалённый источник, при ошибке - окружение
// Результат кэшируется на ttl, конкурентные промахи кэша схлопываются в один запрос
type Service struct {
	client       SettingsClient
	env          EnvDefaults
	location     *time.Location
	ttl          time.Duration
	fetchTimeout time.Duration

	cache atomic.Pointer[cacheEntry]
	group singleflight.Group

	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса конфигурации расписания
func NewService(
	client SettingsClient,
	env EnvDefaults,
	location *time.Location,
	ttl time.Duration,
	metrics Metrics,
	logger Logger,
) *Service {
	if ttl <= 0 {
		ttl = domain.DefaultConfigCacheTTL
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		client:       client,
		env:          env,
		location:     location,
		ttl:          ttl,
		fetchTimeout: defaultFetchTimeout,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetScheduleConfig возвращает актуальную конфигурацию расписания
// Никогда не возвращает ошибку: при любой проблеме с удалённым источником
// используется конфигурация из окружения
func (s *Service) GetScheduleConfig(ctx context.Context) *domain.ScheduleConfig {
	if config, ok := s.fresh(); ok {
		s.metrics.IncScheduleConfig("hit")
		return config
	}

	v, _, _ := s.group.Do("schedule-config", func() (interface{}, error) {
		// Другой вызов мог успеть обновить кэш, пока мы ждали
		if config, ok := s.fresh(); ok {
			return config, nil
		}

		config := s.resolve(ctx)
		s.cache.Store(&cacheEntry{value: config, fetchedAt: s.timeProvider.Now()})
		s.metrics.IncScheduleConfig(string(config.Source))
		return config, nil
	})

	return v.(*domain.ScheduleConfig)
}

// GetScheduleConfigSync возвращает последнюю закэшированную конфигурацию
// (даже устаревшую), а если кэш пуст - конфигурацию из окружения. Сетевых вызовов не делает.
func (s *Service) GetScheduleConfigSync() *domain.ScheduleConfig {
	if entry := s.cache.Load(); entry != nil {
		return entry.value
	}
	return BuildFromEnv(s.env, s.location)
}

// Invalidate сбрасывает кэш; следующий вызов GetScheduleConfig обратится к источнику
func (s *Service) Invalidate() {
	s.cache.Store(nil)
}

func (s *Service) fresh() (*domain.ScheduleConfig, bool) {
	entry := s.cache.Load()
	if entry == nil {
		return nil, false
	}
	if s.timeProvider.Now().Sub(entry.fetchedAt) >= s.ttl {
		return nil, false
	}
	return entry.value, true
}

// resolve запрашивает рабочие часы и настройки бронирования параллельно
func (s *Service) resolve(ctx context.Context) *domain.ScheduleConfig {
	if s.client == nil {
		return BuildFromEnv(s.env, s.location)
	}

	// Обновление кэша не должно обрываться отменой запроса, который его инициировал
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
	defer cancel()

	var (
		hours    *settingsservice.WorkingHours
		settings *settingsservice.BookingSettings
	)

	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		var err error
		hours, err = s.client.GetWorkingHours(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.client.GetBookingSettings(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("ScheduleConfig: remote settings unavailable, using environment defaults: %v", err)
		return BuildFromEnv(s.env, s.location)
	}
	if hours == nil || settings == nil {
		s.logger.Warn("ScheduleConfig: remote settings are empty, using environment defaults")
		return BuildFromEnv(s.env, s.location)
	}

	config := buildFromRemote(hours, settings, s.location)
	s.logger.Info("ScheduleConfig: resolved from remote source: days=%v, periods=%d, slot=%dmin",
		config.WorkingDays, len(config.Periods), config.SlotMinutes)
	return config
}

// buildFromRemote нормализует удалённые настройки в ScheduleConfig
func buildFromRemote(
	hours *settingsservice.WorkingHours,
	settings *settingsservice.BookingSettings,
	loc *time.Location,
) *domain.ScheduleConfig {
	days := ParseDayNames(hours.Days)
	if len(days) == 0 {
		days = defaultWorkingDays()
	}

	expr := strings.TrimSpace(hours.Ranges)
	if expr == "" {
		expr = strings.TrimSpace(hours.Start) + "-" + strings.TrimSpace(hours.End)
	}
	periods := ParseHourRanges(expr)
	if len(periods) == 0 {
		periods = defaultPeriods()
	}

	return &domain.ScheduleConfig{
		WorkingDays:       days,
		SlotMinutes:       normalizeSlotMinutes(settings.SlotMinutes),
		Periods:           periods,
		Location:          loc,
		MinAdvanceHours:   nonNegative(settings.MinAdvanceHours),
		MaxAdvanceDays:    nonNegative(settings.MaxAdvanceDays),
		CancellationHours: nonNegative(settings.CancellationHours),
		Source:            domain.SourceRemote,
	}
}
