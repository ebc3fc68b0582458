package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/pkg/types"
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Schedule ScheduleConfig `toml:"schedule"`
	Booking  BookingConfig  `toml:"booking"`
	Payments PaymentsConfig `toml:"payments"`
	Redis    RedisConfig    `toml:"redis"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к Postgres
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения
// Пароль можно переопределить через переменную окружения LESSONS_DB_PASSWORD
// (загружается из .env в main)
func (d DatabaseConfig) DSN() string {
	password := d.Password
	if env := os.Getenv("LESSONS_DB_PASSWORD"); env != "" {
		password = env
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ScheduleConfig недельный шаблон расписания
type ScheduleConfig struct {
	OpenWeekdays        []string `toml:"open_weekdays"`
	DayStart            string   `toml:"day_start"`
	DayEnd              string   `toml:"day_end"`
	SlotDurationMinutes int      `toml:"slot_duration_minutes"`
}

// BookingConfig правила записи на занятия
type BookingConfig struct {
	NoticeHours          int `toml:"notice_hours"`
	GroupCapacity        int `toml:"group_capacity"`
	MaxSeriesOccurrences int `toml:"max_series_occurrences"`
}

// PaymentsConfig настройки платежного провайдера и свипа
type PaymentsConfig struct {
	ProviderURL          string `toml:"provider_url"`
	TimeoutSeconds       int    `toml:"timeout_seconds"`
	SweepIntervalMinutes int    `toml:"sweep_interval_minutes"`
	SweepEnabled         bool   `toml:"sweep_enabled"`
}

// RedisConfig настройки блокировки свипа через redis (опционально)
type RedisConfig struct {
	Enabled        bool   `toml:"enabled"`
	Addr           string `toml:"addr"`
	LockTTLSeconds int    `toml:"lock_ttl_seconds"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Load читает конфигурацию из TOML файла и валидирует её
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("config: server.http_port must be positive")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("config: database.host and database.dbname are required")
	}
	if len(c.Schedule.OpenWeekdays) == 0 {
		return fmt.Errorf("config: schedule.open_weekdays must not be empty")
	}
	for _, day := range c.Schedule.OpenWeekdays {
		if _, ok := weekdayNames[strings.ToLower(day)]; !ok {
			return fmt.Errorf("config: unknown weekday %q in schedule.open_weekdays", day)
		}
	}
	if _, err := types.NewTimeStringFromString(c.Schedule.DayStart); err != nil {
		return fmt.Errorf("config: invalid schedule.day_start: %w", err)
	}
	if _, err := types.NewTimeStringFromString(c.Schedule.DayEnd); err != nil {
		return fmt.Errorf("config: invalid schedule.day_end: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Schedule.SlotDurationMinutes <= 0 {
		c.Schedule.SlotDurationMinutes = domain.DefaultSlotDurationMinutes
	}
	if c.Booking.NoticeHours <= 0 {
		c.Booking.NoticeHours = domain.CancellationNoticeHours
	}
	if c.Booking.GroupCapacity <= 0 {
		c.Booking.GroupCapacity = domain.DefaultGroupCapacity
	}
	if c.Booking.MaxSeriesOccurrences <= 0 {
		c.Booking.MaxSeriesOccurrences = domain.DefaultMaxSeriesOccurrences
	}
	if c.Payments.TimeoutSeconds <= 0 {
		c.Payments.TimeoutSeconds = 10
	}
	if c.Payments.SweepIntervalMinutes <= 0 {
		c.Payments.SweepIntervalMinutes = 60
	}
	if c.Redis.LockTTLSeconds <= 0 {
		c.Redis.LockTTLSeconds = 300
	}
}

// WeeklySchedule конвертирует конфигурацию в domain модель
func (c *Config) WeeklySchedule() domain.WeeklySchedule {
	open := make(map[time.Weekday]bool, len(c.Schedule.OpenWeekdays))
	for _, day := range c.Schedule.OpenWeekdays {
		if wd, ok := weekdayNames[strings.ToLower(day)]; ok {
			open[wd] = true
		}
	}

	dayStart, _ := types.NewTimeStringFromString(c.Schedule.DayStart)
	dayEnd, _ := types.NewTimeStringFromString(c.Schedule.DayEnd)

	return domain.WeeklySchedule{
		OpenWeekdays:        open,
		DayStart:            dayStart,
		DayEnd:              dayEnd,
		SlotDurationMinutes: c.Schedule.SlotDurationMinutes,
	}
}

// BookingRules конвертирует конфигурацию в domain модель
func (c *Config) BookingRules() domain.BookingRules {
	return domain.BookingRules{
		NoticeHours:          c.Booking.NoticeHours,
		GroupCapacity:        c.Booking.GroupCapacity,
		MaxSeriesOccurrences: c.Booking.MaxSeriesOccurrences,
	}
}
