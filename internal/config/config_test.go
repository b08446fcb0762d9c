package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"HOST", "PORT", "STORAGE_DRIVER", "DATA_PATH", "SYNC_REMOTE_BASE", "ALERT_SINK", "RETENTION_INVENTORY", "MQTT_QOS"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()

	assert.Equal(t, "0.0.0.0:4000", cfg.Addr())
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "data/db.json", cfg.Storage.DataPath)
	assert.Equal(t, 200, cfg.Retention.Inventory)
	assert.Equal(t, 200, cfg.Retention.Requests)
	assert.Equal(t, 50, cfg.Retention.Sessions)
	assert.Empty(t, cfg.Sync.RemoteBase)
	assert.Equal(t, 5*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, AlertSinkNone, cfg.Alert.Sink)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "8088")
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("DB_NAME", "blood")
	t.Setenv("RETENTION_REQUESTS", "5")
	t.Setenv("RETENTION_SESSIONS", "nope")
	t.Setenv("SYNC_REMOTE_BASE", "https://api.example.org/api/")
	t.Setenv("SYNC_TIMEOUT_MS", "250")
	t.Setenv("ALERT_SINK", "STREAM")
	t.Setenv("MQTT_QOS", "7")

	cfg := FromEnv()

	assert.Equal(t, "127.0.0.1:8088", cfg.Addr())
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, "blood", cfg.Database.Database)
	assert.Equal(t, 5, cfg.Retention.Requests)
	assert.Equal(t, 50, cfg.Retention.Sessions)
	assert.Equal(t, "https://api.example.org/api", cfg.Sync.RemoteBase)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.Timeout)
	assert.Equal(t, AlertSinkStream, cfg.Alert.Sink)
	// 越界 QoS 被忽略
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
}
