package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config конфигурация сервиса
type Config struct {
	Server          ServerConfig          `toml:"server"`
	Database        DatabaseConfig        `toml:"database"`
	Logs            LogsConfig            `toml:"logs"`
	Metrics         MetricsConfig         `toml:"metrics"`
	Schedule        ScheduleConfig        `toml:"schedule"`
	Calendar        CalendarConfig        `toml:"calendar"`
	SettingsService SettingsServiceConfig `toml:"settings_service"`
	Notifier        NotifierConfig        `toml:"notifier"`
	Reminders       RemindersConfig       `toml:"reminders"`
	RateLimit       RateLimitConfig       `toml:"rate_limit"`
}

// ServerConfig настройки HTTP сервера, таймауты в секундах
type ServerConfig struct {
	Host            string `toml:"host"`
	HTTPPort        int    `toml:"http_port"`
	ReadTimeout     int    `toml:"read_timeout"`
	WriteTimeout    int    `toml:"write_timeout"`
	IdleTimeout     int    `toml:"idle_timeout"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
}

// Addr адрес для http.Server
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// DatabaseConfig настройки хранилища
// Для postgres соединение собирается из host/port/user/password/dbname/sslmode,
// если не задан готовый dsn. Для sqlite dsn - путь к файлу или ":memory:"
type DatabaseConfig struct {
	Driver          string `toml:"driver"`
	DSNOverride     string `toml:"dsn"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для выбранного драйвера
func (c DatabaseConfig) DSN() string {
	if c.DSNOverride != "" || c.Driver == DriverSQLite {
		return c.DSNOverride
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ScheduleConfig настройки разрешения расписания
type ScheduleConfig struct {
	TimeZone string `toml:"time_zone"`
	// CacheTTL время жизни закэшированной конфигурации, в секундах
	CacheTTL int `toml:"cache_ttl"`
}

// Location часовой пояс бизнеса
func (c ScheduleConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

// CalendarConfig настройки внешнего календаря
// Пустой base_url отключает сверку с календарём
type CalendarConfig struct {
	BaseURL     string `toml:"base_url"`
	AccessToken string `toml:"access_token"`
	CalendarID  string `toml:"calendar_id"`
	Timeout     int    `toml:"timeout"`
}

// SettingsServiceConfig настройки удалённого источника расписания
// Пустой base_url означает работу только по переменным окружения
type SettingsServiceConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Timeout int    `toml:"timeout"`
}

// NotifierConfig настройки вебхука уведомлений
type NotifierConfig struct {
	WebhookURL string `toml:"webhook_url"`
	Secret     string `toml:"secret"`
	Timeout    int    `toml:"timeout"`
}

// RemindersConfig настройки напоминаний
type RemindersConfig struct {
	Enabled   bool     `toml:"enabled"`
	Schedule  string   `toml:"schedule"`
	BatchSize uint64   `toml:"batch_size"`
	Offsets   []string `toml:"offsets"`
}

// OffsetDurations разбирает смещения напоминаний ("24h", "2h", "30m")
func (c RemindersConfig) OffsetDurations() ([]time.Duration, error) {
	offsets := make([]time.Duration, 0, len(c.Offsets))
	for _, raw := range c.Offsets {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: reminders.offsets %q: %v", ErrInvalidConfig, raw, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("%w: reminders.offsets %q must be positive", ErrInvalidConfig, raw)
		}
		offsets = append(offsets, d)
	}
	return offsets, nil
}

// RateLimitConfig ограничение частоты изменяющих запросов по IP
// TrustProxyHeaders включается только за доверенным обратным прокси
type RateLimitConfig struct {
	Enabled           bool `toml:"enabled"`
	RequestsPerMinute int  `toml:"requests_per_minute"`
	Burst             int  `toml:"burst"`
	TrustProxyHeaders bool `toml:"trust_proxy_headers"`
}

// Seconds переводит значение конфигурации в секундах в time.Duration
func Seconds(v int) time.Duration {
	return time.Duration(v) * time.Second
}

// Load читает конфигурацию из TOML файла, применяет значения по умолчанию и проверяет её
func Load(path string) (*Config, error) {
	cfg := base()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default конфигурация по умолчанию: sqlite в файле, метрики и напоминания включены
func Default() *Config {
	cfg := base()
	cfg.applyDefaults()
	return cfg
}

// base значения, которые нельзя отличить от явно выключенных после разбора TOML
func base() *Config {
	return &Config{
		Database: DatabaseConfig{AutoMigrate: true},
		Metrics:  MetricsConfig{Enabled: true},
		Reminders: RemindersConfig{
			Enabled: true,
			Offsets: []string{"24h", "2h"},
		},
		RateLimit: RateLimitConfig{Enabled: true},
	}
}

func (c *Config) applyDefaults() {
	setInt(&c.Server.HTTPPort, 8080)
	setInt(&c.Server.ReadTimeout, 15)
	setInt(&c.Server.WriteTimeout, 30)
	setInt(&c.Server.IdleTimeout, 60)
	setInt(&c.Server.ShutdownTimeout, 10)

	setString(&c.Database.Driver, DriverSQLite)
	if c.Database.Driver == DriverSQLite {
		setString(&c.Database.DSNOverride, "data/appointments.db")
	}
	setInt(&c.Database.Port, 5432)
	setString(&c.Database.SSLMode, "disable")
	setInt(&c.Database.MaxOpenConns, 25)
	setInt(&c.Database.MaxIdleConns, 5)
	setInt(&c.Database.ConnMaxLifetime, 300)

	setString(&c.Logs.Level, "info")

	setString(&c.Metrics.Path, "/metrics")
	setString(&c.Metrics.ServiceName, "appointment_service")

	setString(&c.Schedule.TimeZone, "UTC")
	setInt(&c.Schedule.CacheTTL, 300)

	setInt(&c.Calendar.Timeout, 15)
	setInt(&c.SettingsService.Timeout, 5)
	setInt(&c.Notifier.Timeout, 5)

	setString(&c.Reminders.Schedule, "@every 1m")
	if c.Reminders.BatchSize == 0 {
		c.Reminders.BatchSize = 100
	}

	setInt(&c.RateLimit.RequestsPerMinute, 30)
	setInt(&c.RateLimit.Burst, 10)
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d out of range", ErrInvalidConfig, c.Server.HTTPPort)
	}
	for name, v := range map[string]int{
		"server.read_timeout":      c.Server.ReadTimeout,
		"server.write_timeout":     c.Server.WriteTimeout,
		"server.shutdown_timeout":  c.Server.ShutdownTimeout,
		"calendar.timeout":         c.Calendar.Timeout,
		"settings_service.timeout": c.SettingsService.Timeout,
		"notifier.timeout":         c.Notifier.Timeout,
		"schedule.cache_ttl":       c.Schedule.CacheTTL,
	} {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, name, v)
		}
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSNOverride == "" && (c.Database.Host == "" || c.Database.DBName == "") {
			return fmt.Errorf("%w: database.host and database.dbname are required for postgres", ErrInvalidConfig)
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown database.driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	if _, err := c.Schedule.Location(); err != nil {
		return fmt.Errorf("%w: schedule.time_zone %q: %v", ErrInvalidConfig, c.Schedule.TimeZone, err)
	}

	if _, err := c.Reminders.OffsetDurations(); err != nil {
		return err
	}

	if c.RateLimit.Enabled && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("%w: rate_limit.burst must be positive", ErrInvalidConfig)
	}

	return nil
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}
