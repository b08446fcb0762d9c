package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	commoncfg "github.com/avadhootsavle/hackispiration-hackathon/common/config"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
)

// Alert sinks.
const (
	AlertSinkNone   = "none"
	AlertSinkMQTT   = "mqtt"
	AlertSinkStream = "stream"
)

// Config lifeline-api / lifeline CLI 配置（环境变量，可选 .env）
type Config struct {
	HTTP struct {
		Host string
		Port int
	}
	Storage struct {
		Driver    string
		DataPath  string
		LocksPath string
	}
	SQLite    commoncfg.SQLiteConfig
	Database  commoncfg.DatabaseConfig
	Redis     commoncfg.RedisConfig
	Retention domain.Retention
	Sync      SyncConfig
	Alert     AlertConfig
	MQTT      commoncfg.MQTTConfig
	Log       struct {
		Level  string
		Format string
	}
	Client ClientConfig
}

// SyncConfig 远端同步（Sync Bridge）配置；RemoteBase 为空时不同步
type SyncConfig struct {
	RemoteBase   string
	Timeout      time.Duration
	QueueSize    int
	PullSchedule string // cron 表达式，空则不定时拉取
}

// AlertConfig 紧急告警广播
type AlertConfig struct {
	Sink   string
	Topic  string // mqtt
	Stream string // redis stream
	MaxLen int64
}

// ClientConfig is only read by the lifeline CLI.
type ClientConfig struct {
	CachePath string
	APIBase   string
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.HTTP.Port))
}

// Load reads .env (if present) and then the environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the config from the current environment only.
func FromEnv() *Config {
	cfg := &Config{}
	cfg.HTTP.Host = getEnv("HOST", "0.0.0.0")
	cfg.HTTP.Port = parseInt(getEnv("PORT", "4000"), 4000)

	cfg.Storage.Driver = strings.ToLower(getEnv("STORAGE_DRIVER", "file"))
	cfg.Storage.DataPath = getEnv("DATA_PATH", filepath.Join("data", "db.json"))
	cfg.Storage.LocksPath = getEnv("LOCKS_PATH", filepath.Join("data", "locks.json"))
	cfg.SQLite.Path = getEnv("SQLITE_PATH", filepath.Join("data", "lifeline.db"))

	// 默认值，再由 DB_* / REDIS_* 覆盖
	cfg.Database = commoncfg.DatabaseConfig{
		Host: "localhost", Port: 5432, User: "postgres", Password: "postgres",
		Database: "lifeline", SSLMode: "disable", MaxConns: 10,
	}
	cfg.Database.LoadFromEnv("DB")
	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	def := domain.DefaultRetention()
	cfg.Retention.Inventory = parseInt(getEnv("RETENTION_INVENTORY", ""), def.Inventory)
	cfg.Retention.Requests = parseInt(getEnv("RETENTION_REQUESTS", ""), def.Requests)
	cfg.Retention.Sessions = parseInt(getEnv("RETENTION_SESSIONS", ""), def.Sessions)

	cfg.Sync.RemoteBase = strings.TrimRight(getEnv("SYNC_REMOTE_BASE", ""), "/")
	cfg.Sync.Timeout = time.Duration(parseInt(getEnv("SYNC_TIMEOUT_MS", "5000"), 5000)) * time.Millisecond
	cfg.Sync.QueueSize = parseInt(getEnv("SYNC_QUEUE_SIZE", "64"), 64)
	cfg.Sync.PullSchedule = getEnv("SYNC_PULL_SCHEDULE", "")

	cfg.Alert.Sink = strings.ToLower(getEnv("ALERT_SINK", AlertSinkNone))
	cfg.Alert.Topic = getEnv("ALERT_TOPIC", "lifeline/alerts")
	cfg.Alert.Stream = getEnv("ALERT_STREAM", "lifeline:alerts")
	cfg.Alert.MaxLen = int64(parseInt(getEnv("ALERT_STREAM_MAXLEN", "1000"), 1000))

	cfg.MQTT = commoncfg.MQTTConfig{Broker: "tcp://localhost:1883", ClientID: "lifeline-api", QoS: 1}
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Client.CachePath = getEnv("LIFELINE_CACHE_PATH", defaultCachePath())
	cfg.Client.APIBase = strings.TrimRight(getEnv("LIFELINE_API_BASE", "http://localhost:4000/api"), "/")

	return cfg
}

func defaultCachePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "lifeline", "cache.json")
	}
	return filepath.Join(".lifeline", "cache.json")
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
