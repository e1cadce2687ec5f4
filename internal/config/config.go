package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

// EnvPrefix префикс переменных окружения, переопределяющих значения из файла
const EnvPrefix = "SLOTS"

// Хранилища счетчиков защиты от злоупотреблений
const (
	AbuseStoreMemory = "memory"
	AbuseStoreRedis  = "redis"
)

var (
	// ErrReadConfig возвращается, когда не удалось прочитать файл конфигурации
	ErrReadConfig = errors.New("config: failed to read config file")

	// ErrEnvOverride возвращается при некорректных переменных окружения
	ErrEnvOverride = errors.New("config: failed to apply environment overrides")

	// ErrInvalidConfig возвращается, когда конфигурация не прошла валидацию
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server          ServerConfig          `toml:"server" split_words:"true"`
	Database        DatabaseConfig        `toml:"database" split_words:"true"`
	Logs            LogsConfig            `toml:"logs" split_words:"true"`
	Metrics         MetricsConfig         `toml:"metrics" split_words:"true"`
	FacilityService FacilityServiceConfig `toml:"facility_service" split_words:"true"`
	Redis           RedisConfig           `toml:"redis" split_words:"true"`
	RabbitMQ        RabbitMQConfig        `toml:"rabbitmq" split_words:"true"`
	AbuseGuard      AbuseGuardConfig      `toml:"abuse_guard" split_words:"true"`
	Booking         BookingConfig         `toml:"booking" split_words:"true"`
	Jobs            JobsConfig            `toml:"jobs" split_words:"true"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port" split_words:"true"`
	ReadTimeout     int `toml:"read_timeout" split_words:"true"`
	WriteTimeout    int `toml:"write_timeout" split_words:"true"`
	IdleTimeout     int `toml:"idle_timeout" split_words:"true"`
	ShutdownTimeout int `toml:"shutdown_timeout" split_words:"true"`
}

// DatabaseConfig настройки PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host" split_words:"true"`
	Port            int    `toml:"port" split_words:"true"`
	User            string `toml:"user" split_words:"true"`
	Password        string `toml:"password" split_words:"true"`
	DBName          string `toml:"dbname" split_words:"true"`
	SSLMode         string `toml:"sslmode" split_words:"true"`
	MaxOpenConns    int    `toml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int    `toml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" split_words:"true"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level" split_words:"true"`
	File  string `toml:"file" split_words:"true"`
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" split_words:"true"`
	Path        string `toml:"path" split_words:"true"`
	ServiceName string `toml:"service_name" split_words:"true"`
}

// FacilityServiceConfig настройки клиента сервиса площадок
type FacilityServiceConfig struct {
	URL     string `toml:"url" split_words:"true"`
	Timeout int    `toml:"timeout" split_words:"true"` // секунды
}

// RedisConfig настройки Redis (используется для общего счетчика попыток бронирования)
type RedisConfig struct {
	Addr      string `toml:"addr" split_words:"true"`
	Password  string `toml:"password" split_words:"true"`
	DB        int    `toml:"db" split_words:"true"`
	KeyPrefix string `toml:"key_prefix" split_words:"true"`
}

// RabbitMQConfig настройки публикации доменных событий
type RabbitMQConfig struct {
	Enabled  bool   `toml:"enabled" split_words:"true"`
	URL      string `toml:"url" split_words:"true"`
	Exchange string `toml:"exchange" split_words:"true"`
}

// AbuseGuardConfig настройки ограничения частоты бронирований по телефону
type AbuseGuardConfig struct {
	Store         string `toml:"store" split_words:"true"` // memory | redis
	WindowMinutes int    `toml:"window_minutes" split_words:"true"`
	Limit         int    `toml:"limit" split_words:"true"`
}

// Window размер скользящего окна
func (c AbuseGuardConfig) Window() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}

// BookingConfig бизнес-настройки бронирования
type BookingConfig struct {
	MaxActiveSlots             int    `toml:"max_active_slots" split_words:"true"`
	Timezone                   string `toml:"timezone" split_words:"true"`
	MaterializationHorizonDays int    `toml:"materialization_horizon_days" split_words:"true"`
	GenerationMaxHorizonDays   int    `toml:"generation_max_horizon_days" split_words:"true"`
	RecurringDepositLeadHours  int    `toml:"recurring_deposit_lead_hours" split_words:"true"`
}

// Location часовой пояс по умолчанию для площадок без собственного
func (c BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// RecurringDepositLead срок оплаты депозита до начала материализованного слота
func (c BookingConfig) RecurringDepositLead() time.Duration {
	return time.Duration(c.RecurringDepositLeadHours) * time.Hour
}

// JobsConfig расписания периодических задач (формат robfig/cron)
type JobsConfig struct {
	Enabled             bool   `toml:"enabled" split_words:"true"`
	ExpirationSpec      string `toml:"expiration_spec" split_words:"true"`
	MaterializationSpec string `toml:"materialization_spec" split_words:"true"`
	GenerationSpec      string `toml:"generation_spec" split_words:"true"`
	Timeout             int    `toml:"timeout" split_words:"true"` // секунды на один запуск

	// AdminUserIDs пользователи, которым доступен ручной запуск задач через API
	AdminUserIDs []int64 `toml:"admin_user_ids" envconfig:"ADMIN_USER_IDS"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "court-slot-service",
		},
		FacilityService: FacilityServiceConfig{
			Timeout: 5,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "slots:abuse",
		},
		RabbitMQ: RabbitMQConfig{
			Exchange: "court_slots.events",
		},
		AbuseGuard: AbuseGuardConfig{
			Store:         AbuseStoreMemory,
			WindowMinutes: int(domain.DefaultAbuseWindow / time.Minute),
			Limit:         domain.DefaultAbuseLimit,
		},
		Booking: BookingConfig{
			MaxActiveSlots:             domain.MaxActiveSlotsPerClient,
			Timezone:                   "UTC",
			MaterializationHorizonDays: domain.DefaultMaterializationHorizonDays,
			GenerationMaxHorizonDays:   domain.MaxGenerationHorizonDays,
			RecurringDepositLeadHours:  int(domain.RecurringDepositLeadTime / time.Hour),
		},
		Jobs: JobsConfig{
			Enabled:             true,
			ExpirationSpec:      "@every 5m",
			MaterializationSpec: "0 3 * * *",
			GenerationSpec:      "30 3 * * *",
			Timeout:             600,
		},
	}
}

// Load читает конфигурацию из TOML файла и применяет переопределения из окружения (SLOTS_*)
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadConfig, err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadConfig, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvOverride, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("%w: server.http_port must be positive", ErrInvalidConfig)
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("%w: database host, dbname and user are required", ErrInvalidConfig)
	}
	if c.FacilityService.URL == "" {
		return fmt.Errorf("%w: facility_service.url is required", ErrInvalidConfig)
	}
	switch c.AbuseGuard.Store {
	case AbuseStoreMemory:
	case AbuseStoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: redis.addr is required for redis abuse guard store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown abuse_guard.store %q", ErrInvalidConfig, c.AbuseGuard.Store)
	}
	if c.AbuseGuard.WindowMinutes <= 0 || c.AbuseGuard.Limit <= 0 {
		return fmt.Errorf("%w: abuse_guard window and limit must be positive", ErrInvalidConfig)
	}
	if c.RabbitMQ.Enabled && (c.RabbitMQ.URL == "" || c.RabbitMQ.Exchange == "") {
		return fmt.Errorf("%w: rabbitmq url and exchange are required when enabled", ErrInvalidConfig)
	}
	if c.Booking.MaxActiveSlots <= 0 {
		return fmt.Errorf("%w: booking.max_active_slots must be positive", ErrInvalidConfig)
	}
	if c.Booking.MaterializationHorizonDays <= 0 {
		return fmt.Errorf("%w: booking.materialization_horizon_days must be positive", ErrInvalidConfig)
	}
	if c.Booking.GenerationMaxHorizonDays <= 0 || c.Booking.GenerationMaxHorizonDays > domain.MaxGenerationHorizonDays {
		return fmt.Errorf("%w: booking.generation_max_horizon_days must be between 1 and %d",
			ErrInvalidConfig, domain.MaxGenerationHorizonDays)
	}
	if c.Booking.RecurringDepositLeadHours < 0 {
		return fmt.Errorf("%w: booking.recurring_deposit_lead_hours must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("%w: booking.timezone: %v", ErrInvalidConfig, err)
	}
	return nil
}
