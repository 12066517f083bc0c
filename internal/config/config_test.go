package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[mainConfig]
appName = "omamori"
port = 9000

[databaseConfig]
driver = "sqlite"

[kafkaConfig]
brokers = ["127.0.0.1:9092"]
partitions = 6
retentionHours = 24

[monitoringConfig]
undoWindowSeconds = 30
undoableTriggerTypes = ["check_in", "heartbeat"]

[monitoringConfig.risk]
dangerThreshold = 70
lowTemperature = -10.0
`), 0o644))
	t.Setenv("OMAMORI_CONFIG", path)

	var c Config
	require.NoError(t, LoadConfig(&c))

	assert.Equal(t, 9000, c.MainConfig.Port)
	assert.Equal(t, "sqlite", c.DatabaseConfig.Driver)
	assert.Equal(t, []string{"127.0.0.1:9092"}, c.KafkaConfig.Brokers)
	assert.Equal(t, int32(6), c.KafkaConfig.Partitions)
	assert.Equal(t, 24, c.KafkaConfig.RetentionHours)
	assert.Equal(t, 30, c.MonitoringConfig.UndoWindowSeconds)
	assert.Equal(t, []string{"check_in", "heartbeat"}, c.MonitoringConfig.UndoableTriggerTypes)
	assert.Equal(t, 70, c.MonitoringConfig.Risk.DangerThreshold)
	require.NotNil(t, c.MonitoringConfig.Risk.LowTemperature)
	assert.Equal(t, -10.0, *c.MonitoringConfig.Risk.LowTemperature)
	assert.Nil(t, c.MonitoringConfig.Risk.SevereWeather)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("OMAMORI_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))
	var c Config
	assert.Error(t, LoadConfig(&c))
}

func TestSetConfig(t *testing.T) {
	c := &Config{}
	c.JwtConfig.Key = "k"
	SetConfig(c)
	assert.Same(t, c, GetConfig())
}
