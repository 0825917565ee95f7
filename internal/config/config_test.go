package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr())
	assert.Empty(t, cfg.Database.DSN)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "ble-observations", cfg.Kafka.ObservationsTopic)
	assert.Equal(t, "ble-device-profiles", cfg.Kafka.ProfilesTopic)
	assert.Equal(t, "ble-alerts", cfg.Kafka.AlertsTopic)
	assert.Equal(t, "ble-observation-audit", cfg.Kafka.AuditTopic)
	assert.Equal(t, 256, cfg.Notifier.Buffer)
	assert.Equal(t, uint32(5), cfg.Notifier.Breaker.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.Notifier.Breaker.Timeout)
	assert.Equal(t, "info", cfg.Logs.Level)
}

func Test_LoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ble.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9090"
kafka:
  brokers: "kafka:29092"
  alerts_topic: "alerts-from-file"
logs:
  level: debug
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("BLEMAP_KAFKA_ALERTS_TOPIC", "alerts-from-env")
	t.Setenv("BLEMAP_DATABASE_DSN", "postgres://u:p@localhost:5432/ble")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr())
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "alerts-from-env", cfg.Kafka.AlertsTopic)
	assert.Equal(t, "postgres://u:p@localhost:5432/ble", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.Logs.Level)
}

func Test_LoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [unterminated"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.ErrorIs(t, err, ErrReadConfig)
}

func Test_Validate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.HTTP.Port = "8080"
		c.Notifier.Buffer = 1
		c.Logs.Level = "info"
		return c
	}

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty port", mutate: func(c *Config) { c.HTTP.Port = "" }, wantErr: true},
		{name: "dsn without migrations", mutate: func(c *Config) { c.Database.DSN = "postgres://x" }, wantErr: true},
		{name: "kafka without topics", mutate: func(c *Config) { c.Kafka.Brokers = "kafka:29092" }, wantErr: true},
		{name: "zero buffer", mutate: func(c *Config) { c.Notifier.Buffer = 0 }, wantErr: true},
		{name: "unknown level", mutate: func(c *Config) { c.Logs.Level = "loud" }, wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := valid()
			c.mutate(cfg)
			err := cfg.Validate()
			if c.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
