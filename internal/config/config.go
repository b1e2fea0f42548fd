package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "alshuail-fund/pkg/config"
)

// Config alshuail-fund (HTTP API) configuration.
type Config struct {
	HTTP struct {
		Addr string
	}
	Database commoncfg.DatabaseConfig
	Redis    commoncfg.RedisConfig
	Log      struct {
		Level  string
		Format string
	}
	Stats struct {
		CacheTTL time.Duration
	}
	SMS  SMSConfig
	MQTT MQTTConfig
}

// SMSConfig external SMS gateway settings. Empty URL leaves SMS rows queued.
type SMSConfig struct {
	GatewayURL string
	APIKey     string
	Sender     string
}

// MQTTConfig optional in-app push over MQTT (default disabled).
type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "alshuail")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// Dashboard statistics cache TTL (seconds). The legacy admin polls this
	// endpoint aggressively, so keep a short server-side cache.
	cfg.Stats.CacheTTL = time.Duration(parseInt(getEnv("STATS_CACHE_TTL", "300"), 300)) * time.Second

	cfg.SMS.GatewayURL = getEnv("SMS_GATEWAY_URL", "")
	cfg.SMS.APIKey = getEnv("SMS_API_KEY", "")
	cfg.SMS.Sender = getEnv("SMS_SENDER", "ALSHUAIL")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "alshuail-fund-notify")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", "fund/notifications")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
