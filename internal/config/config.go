package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrReadConfig      = errors.New("failed to read config")
	ErrUnmarshalConfig = errors.New("failed to unmarshal config")
	ErrInvalidConfig   = errors.New("invalid config")
)

type Config struct {
	HTTP struct {
		Address         string        `mapstructure:"address"`
		Port            string        `mapstructure:"port"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`

	// An empty DSN selects the in-memory store.
	Database struct {
		DSN            string `mapstructure:"dsn"`
		MigrationsPath string `mapstructure:"migrations_path"`
		MaxConns       int32  `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	// Empty brokers disable every Kafka component.
	Kafka struct {
		Brokers           string `mapstructure:"brokers"`
		GroupID           string `mapstructure:"group_id"`
		ObservationsTopic string `mapstructure:"observations_topic"`
		ProfilesTopic     string `mapstructure:"profiles_topic"`
		AlertsTopic       string `mapstructure:"alerts_topic"`
		AuditTopic        string `mapstructure:"audit_topic"`
	} `mapstructure:"kafka"`

	Notifier struct {
		Buffer          int           `mapstructure:"buffer"`
		DeliveryTimeout time.Duration `mapstructure:"delivery_timeout"`
		Breaker         struct {
			MaxFailures uint32        `mapstructure:"max_failures"`
			Timeout     time.Duration `mapstructure:"timeout"`
			Interval    time.Duration `mapstructure:"interval"`
		} `mapstructure:"breaker"`
	} `mapstructure:"notifier"`

	Logs struct {
		Level      string `mapstructure:"level"`
		File       string `mapstructure:"file"`
		MaxSize    int    `mapstructure:"max_size"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAge     int    `mapstructure:"max_age"`
		Compress   bool   `mapstructure:"compress"`
	} `mapstructure:"logs"`
}

func (c *Config) ListenAddr() string {
	return c.HTTP.Address + ":" + c.HTTP.Port
}

func (c *Config) KafkaEnabled() bool {
	return strings.TrimSpace(c.Kafka.Brokers) != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.address", "0.0.0.0")
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.migrations_path", "internal/db/migrations")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.group_id", "ble-ingestor")
	v.SetDefault("kafka.observations_topic", "ble-observations")
	v.SetDefault("kafka.profiles_topic", "ble-device-profiles")
	v.SetDefault("kafka.alerts_topic", "ble-alerts")
	v.SetDefault("kafka.audit_topic", "ble-observation-audit")

	v.SetDefault("notifier.buffer", 256)
	v.SetDefault("notifier.delivery_timeout", 5*time.Second)
	v.SetDefault("notifier.breaker.max_failures", 5)
	v.SetDefault("notifier.breaker.timeout", 30*time.Second)
	v.SetDefault("notifier.breaker.interval", 60*time.Second)

	v.SetDefault("logs.level", "info")
	v.SetDefault("logs.file", "")
	v.SetDefault("logs.max_size", 100)
	v.SetDefault("logs.max_backups", 3)
	v.SetDefault("logs.max_age", 28)
	v.SetDefault("logs.compress", false)
}

// Load reads defaults, an optional YAML file and BLEMAP_* environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	const fn = "Config:Load"

	v := viper.New()
	v.SetEnvPrefix("BLEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/ble-visibility-map")
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("%s:%w:%w", fn, ErrReadConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrUnmarshalConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s:%w", fn, err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Port) == "" {
		return fmt.Errorf("%w: http.port must not be empty", ErrInvalidConfig)
	}
	if c.Database.DSN != "" && strings.TrimSpace(c.Database.MigrationsPath) == "" {
		return fmt.Errorf("%w: database.migrations_path is required with a dsn", ErrInvalidConfig)
	}
	if c.KafkaEnabled() {
		if c.Kafka.ObservationsTopic == "" || c.Kafka.ProfilesTopic == "" || c.Kafka.AlertsTopic == "" || c.Kafka.AuditTopic == "" {
			return fmt.Errorf("%w: kafka topics must not be empty", ErrInvalidConfig)
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("%w: kafka.group_id must not be empty", ErrInvalidConfig)
		}
	}
	if c.Notifier.Buffer <= 0 {
		return fmt.Errorf("%w: notifier.buffer must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Logs.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown logs.level %q", ErrInvalidConfig, c.Logs.Level)
	}
	return nil
}
