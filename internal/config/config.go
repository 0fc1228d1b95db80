package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Calendly     CalendlyConfig     `toml:"calendly"`
	Stripe       StripeConfig       `toml:"stripe"`
	RefundPolicy RefundPolicyConfig `toml:"refund_policy"`
	Retention    RetentionConfig    `toml:"retention"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
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

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки метрик Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// CalendlyConfig настройки интеграции со scheduling-провайдером
type CalendlyConfig struct {
	BaseURL                   string `toml:"base_url"`
	Token                     string `toml:"token"`
	WebhookSecret             string `toml:"webhook_secret"`
	SignatureToleranceSeconds int    `toml:"signature_tolerance_seconds"`
	Timeout                   int    `toml:"timeout"`
}

// StripeConfig настройки интеграции с платежным провайдером
type StripeConfig struct {
	SecretKey     string `toml:"secret_key"`
	WebhookSecret string `toml:"webhook_secret"`
	SuccessURL    string `toml:"success_url"`
	CancelURL     string `toml:"cancel_url"`
}

// RefundPolicyConfig параметры политики возвратов
// Политика не зашита в state machine, а настраивается здесь
type RefundPolicyConfig struct {
	// FullRefundHours минимальное количество часов до начала сессии
	// для полного возврата при отмене клиентом
	FullRefundHours int `toml:"full_refund_hours"`
	// PartialRefundPercent процент возврата при отмене внутри окна (0-100)
	PartialRefundPercent int `toml:"partial_refund_percent"`
}

// RetentionConfig настройки ретенции журнала webhook-доставок
type RetentionConfig struct {
	// DeliveryTTLDays сколько дней хранить записи о доставках
	// Провайдеры могут повторять доставки спустя часы и дни после сбоев,
	// поэтому окно должно быть длинным
	DeliveryTTLDays int `toml:"delivery_ttl_days"`
	// SweepSchedule cron-расписание очистки
	SweepSchedule string `toml:"sweep_schedule"`
}

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if cfg.Server.HTTPPort == 0 {
		return nil, fmt.Errorf("config: server.http_port is required")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		return nil, fmt.Errorf("config: database host and dbname are required")
	}
	if cfg.RefundPolicy.PartialRefundPercent < 0 || cfg.RefundPolicy.PartialRefundPercent > 100 {
		return nil, fmt.Errorf("config: refund_policy.partial_refund_percent must be in [0, 100]")
	}

	return &cfg, nil
}
