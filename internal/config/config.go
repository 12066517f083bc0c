package config

import (
	"log"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type MainConfig struct {
	AppName string `toml:"appName"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	TLS     bool   `toml:"tls"`
}

// DatabaseConfig selects the gorm dialector. Driver is one of mysql, postgres, sqlite.
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
	SSLMode      string `toml:"sslMode"`
	// Path is the sqlite file; empty means in-memory.
	Path string `toml:"path"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
	Debug   bool   `toml:"debug"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

type KafkaConfig struct {
	Brokers        []string `toml:"brokers"`
	ClientID       string   `toml:"clientID"`
	AlertTopic     string   `toml:"alertTopic"`
	Partitions     int32    `toml:"partitions"`
	Replication    int16    `toml:"replication"`
	MinInSync      int16    `toml:"minInSyncReplicas"`
	RetentionHours int      `toml:"retentionHours"`
}

type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
}

// RiskConfig carries the scorer and level thresholds. Zero values fall back to defaults.
type RiskConfig struct {
	DangerThreshold     int      `toml:"dangerThreshold"`
	CautionThreshold    int      `toml:"cautionThreshold"`
	DangerPollSeconds   int      `toml:"dangerPollSeconds"`
	CautionPollSeconds  int      `toml:"cautionPollSeconds"`
	SafePollSeconds     int      `toml:"safePollSeconds"`
	LowBatteryLevel     int      `toml:"lowBatteryLevel"`
	PoorGPSAccuracy     float64  `toml:"poorGpsAccuracy"`
	LongInactiveMinutes int      `toml:"longInactiveMinutes"`
	HighTemperature     *float64 `toml:"highTemperature"`
	LowTemperature      *float64 `toml:"lowTemperature"`
	SevereWeather       []string `toml:"severeWeather"`
}

type MonitoringConfig struct {
	Risk                  RiskConfig `toml:"risk"`
	UndoWindowSeconds     int        `toml:"undoWindowSeconds"`
	UndoableTriggerTypes  []string   `toml:"undoableTriggerTypes"`
	TimeoutGraceMinutes   int        `toml:"timeoutGraceMinutes"`
	MonitorPollSpec       string     `toml:"monitorPollSpec"`
	LatestRiskTTLSeconds  int        `toml:"latestRiskTtlSeconds"`
	OutboxPollMillis      int        `toml:"outboxPollMillis"`
	OutboxBatchSize       int        `toml:"outboxBatchSize"`
	OutboxMaxRetries      int        `toml:"outboxMaxRetries"`
	DefaultIntervalMinute int        `toml:"defaultIntervalMinutes"`
}

type Config struct {
	MainConfig       `toml:"mainConfig"`
	DatabaseConfig   `toml:"databaseConfig"`
	JwtConfig        `toml:"jwtConfig"`
	KafkaConfig      `toml:"kafkaConfig"`
	LogConfig        `toml:"logConfig"`
	RedisConfig      `toml:"redisConfig"`
	MonitoringConfig `toml:"monitoringConfig"`
}

const defaultConfigPath = "configs/config_local.toml"

var (
	config *Config
	mu     sync.Mutex
)

// LoadConfig reads .env (if any) and then the TOML file named by OMAMORI_CONFIG.
func LoadConfig(c *Config) error {
	_ = godotenv.Load()

	configPath := os.Getenv("OMAMORI_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	if _, err := toml.DecodeFile(configPath, c); err != nil {
		log.Printf("failed to load config %s: %v, using defaults", configPath, err)
		return err
	}
	return nil
}

func GetConfig() *Config {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		config = new(Config)
		_ = LoadConfig(config)
	}
	return config
}

// SetConfig replaces the global configuration. Used by tests.
func SetConfig(c *Config) {
	mu.Lock()
	defer mu.Unlock()
	config = c
}
