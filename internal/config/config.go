package config

import (
	"errors"
	"fmt"
	"os"

	"goodfork/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig                    `yaml:"app"`
	Database   DatabaseConfig               `yaml:"database"`
	Redis      RedisConfig                  `yaml:"redis"`
	Backup     BackupConfig                 `yaml:"backup"`
	Monitoring MonitoringConfig             `yaml:"monitoring"`
	Logging    LoggingConfig                `yaml:"logging"`
	Exports    ExportConfig                 `yaml:"exports"`
	Booking    BookingConfig                `yaml:"booking"`
	Tables     []TableSeed                  `yaml:"tables"`
	Menus      []models.Menu                `yaml:"menus"`
	Units      []models.MeasurementUnitType `yaml:"units"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `yaml:"prometheus_enabled"`
	PrometheusPort    int    `yaml:"prometheus_port"`
	HealthCheckPort   int    `yaml:"health_check_port"`
	LogLevel          string `yaml:"log_level"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type BookingConfig struct {
	MaxBookingDays    int `yaml:"max_booking_days"`
	RateLimitOrders   int `yaml:"rate_limit_orders"`
	RateLimitWindow   int `yaml:"rate_limit_window"`
	MinBookingAdvance int `yaml:"min_booking_advance"`
	NoShowGraceMin    int `yaml:"no_show_grace_min"`
}

// TableSeed describes one hall table created on first start.
type TableSeed struct {
	Name     string `yaml:"name"`
	Capacity int64  `yaml:"capacity"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; it only feeds os.ExpandEnv below
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	for _, table := range c.Tables {
		if table.Capacity <= 0 {
			return fmt.Errorf("table %q has non-positive capacity", table.Name)
		}
	}

	return ValidateMenus(c.Menus)
}

func ValidateMenus(menus []models.Menu) error {
	menuIDs := make(map[int64]bool)
	for _, menu := range menus {
		if menu.ID == 0 {
			return fmt.Errorf("menu '%s' has invalid ID 0", menu.Name)
		}
		if menuIDs[menu.ID] {
			return fmt.Errorf("duplicate menu ID found: %d", menu.ID)
		}
		menuIDs[menu.ID] = true

		if menu.Price < 0 {
			return fmt.Errorf("menu '%s' has negative price", menu.Name)
		}
		for _, ing := range menu.Ingredients {
			if ing.Stock == "" || ing.Unit == "" {
				return fmt.Errorf("menu '%s' has an ingredient without stock name or unit", menu.Name)
			}
			if ing.Quantity <= 0 {
				return fmt.Errorf("menu '%s' ingredient '%s' has non-positive quantity", menu.Name, ing.Stock)
			}
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = 365
	}
	if c.Booking.RateLimitOrders == 0 {
		c.Booking.RateLimitOrders = models.RateLimitOrders
	}
	if c.Booking.RateLimitWindow == 0 {
		c.Booking.RateLimitWindow = models.RateLimitWindow
	}
	if c.Booking.NoShowGraceMin == 0 {
		c.Booking.NoShowGraceMin = 30
	}
}
