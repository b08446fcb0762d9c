package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/common/logger"
	"github.com/avadhootsavle/hackispiration-hackathon/common/mqtt"
	rediscommon "github.com/avadhootsavle/hackispiration-hackathon/common/redis"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/config"
	httpapi "github.com/avadhootsavle/hackispiration-hackathon/internal/http"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/identity"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/metrics"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/notify"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/service"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/syncbridge"
)

func main() {
	// 1. 加载配置
	cfg := config.Load()

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "lifeline-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. 存储
	backend, err := store.Open(ctx, store.Options{
		Driver:    cfg.Storage.Driver,
		DataPath:  cfg.Storage.DataPath,
		LocksPath: cfg.Storage.LocksPath,
		SQLite:    cfg.SQLite,
		Database:  cfg.Database,
		Redis:     cfg.Redis,
	}, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer backend.Close()

	m := metrics.New()

	// 4. 可选：转发到上游（relay 部署）
	var bridge syncbridge.Bridge = syncbridge.NopBridge{}
	var httpBridge *syncbridge.HTTPBridge
	if cfg.Sync.RemoteBase != "" {
		httpBridge = syncbridge.NewHTTPBridge(syncbridge.Options{
			BaseURL:   cfg.Sync.RemoteBase,
			Timeout:   cfg.Sync.Timeout,
			QueueSize: cfg.Sync.QueueSize,
		}, m, log)
		bridge = httpBridge
		log.Info("sync bridge enabled", zap.String("remote", cfg.Sync.RemoteBase))
	}
	var refresher *syncbridge.Refresher
	if httpBridge != nil && cfg.Sync.PullSchedule != "" {
		refresher = syncbridge.NewRefresher(bridge, backend.Documents, cfg.Sync.Timeout, log)
		if err := refresher.Start(cfg.Sync.PullSchedule); err != nil {
			log.Fatal("Invalid SYNC_PULL_SCHEDULE", zap.Error(err))
		}
	}

	// 5. 告警广播
	notifier, feed, closeNotifier := buildNotifier(ctx, cfg, backend, log)
	defer closeNotifier()

	// 6. 服务与路由
	docs := backend.Documents
	matcher := service.NewMatcher(docs)
	requests := service.NewRequestLedger(docs, bridge, cfg.Retention.Requests, m, log)
	api := httpapi.NewAPIHandler(httpapi.APIDeps{
		Donations: service.NewDonationLedger(docs, backend.Locks, bridge, cfg.Retention.Inventory, m, log),
		Requests:  requests,
		Sessions:  service.NewSessions(docs, bridge, cfg.Retention.Sessions, m, log),
		Matcher:   matcher,
		Alerts:    service.NewAlerts(matcher, requests, notifier, m, log),
		Mirror:    service.NewMirror(docs, cfg.Retention, m),
		Identity:  identity.NewSessionResolver(docs),
		AlertFeed: feed,
		Logger:    log,
	})

	router := httpapi.NewRouter(log)
	router.RegisterLegacyRoutes(httpapi.NewLegacyHandler(api.Mirror, log))
	router.RegisterV1Routes(api)
	router.RegisterOpsRoutes(httpapi.Health(docs, backend.Driver, log), m.Handler())

	srv := service.NewServer(cfg.Addr(), router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// 7. 等待信号（优雅关闭）
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("Server error", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("Server shutdown", zap.Error(err))
	}
	if refresher != nil {
		refresher.Stop()
	}
	if httpBridge != nil {
		if err := httpBridge.Close(shutdownCtx); err != nil {
			log.Warn("Sync outbox not drained", zap.Error(err))
		}
	}
	log.Info("lifeline-api stopped")
}

// buildNotifier 按 ALERT_SINK 选择广播方式；stream 同时提供最近告警查询
func buildNotifier(ctx context.Context, cfg *config.Config, backend *store.Backend, log *zap.Logger) (notify.Notifier, httpapi.AlertFeed, func()) {
	switch cfg.Alert.Sink {
	case config.AlertSinkMQTT:
		client, err := mqtt.NewClient(&cfg.MQTT, log)
		if err != nil {
			log.Warn("MQTT unavailable, alerts will not be broadcast", zap.Error(err))
			return notify.Nop{}, nil, func() {}
		}
		return notify.NewMQTTNotifier(client, cfg.Alert.Topic), nil, client.Disconnect

	case config.AlertSinkStream:
		client := backend.Redis
		closeFn := func() {}
		if client == nil {
			client = rediscommon.NewRedisClient(&cfg.Redis)
			if err := rediscommon.Ping(ctx, client); err != nil {
				_ = client.Close()
				log.Warn("Redis unavailable, alerts will not be broadcast", zap.Error(err))
				return notify.Nop{}, nil, func() {}
			}
			closeFn = func() { _ = rediscommon.Close(client) }
		}
		n := notify.NewStreamNotifier(client, cfg.Alert.Stream, cfg.Alert.MaxLen)
		return n, n, closeFn

	case config.AlertSinkNone, "":
		return notify.Nop{}, nil, func() {}

	default:
		log.Warn("unknown ALERT_SINK, alerts disabled", zap.String("sink", cfg.Alert.Sink))
		return notify.Nop{}, nil, func() {}
	}
}
