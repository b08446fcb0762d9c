package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/common/logger"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/client"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/config"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/syncbridge"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.Load()

	log, err := logger.NewCLILogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		client.Usage(os.Stdout)
		return 0
	}

	// 本地缓存：文档、当前会话、捐献锁
	kv := store.NewFileKV(cfg.Client.CachePath)

	var bridge syncbridge.Bridge = syncbridge.NopBridge{}
	var httpBridge *syncbridge.HTTPBridge
	if cfg.Client.APIBase != "" && cfg.Client.APIBase != "-" {
		httpBridge = syncbridge.NewHTTPBridge(syncbridge.Options{
			BaseURL:   cfg.Client.APIBase,
			Timeout:   cfg.Sync.Timeout,
			QueueSize: cfg.Sync.QueueSize,
		}, nil, log)
		bridge = httpBridge
	}

	app := client.New(client.Options{
		KV:        kv,
		Bridge:    bridge,
		Retention: cfg.Retention,
		Out:       os.Stdout,
		Logger:    log,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runErr := app.Run(ctx, args)

	// 退出前把 outbox 里的推送发完
	if httpBridge != nil {
		drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.Sync.Timeout+time.Second)
		if err := httpBridge.Close(drainCtx); err != nil {
			log.Warn("pending sync pushes dropped", zap.Error(err))
		}
		drainCancel()
	}

	switch {
	case runErr == nil:
		return 0
	case errors.Is(runErr, domain.ErrAlreadyDonated):
		fmt.Fprintln(os.Stderr, client.MsgAlreadyDonated)
		return 1
	case errors.Is(runErr, client.ErrUsage):
		fmt.Fprintln(os.Stderr, runErr)
		client.Usage(os.Stderr)
		return 2
	default:
		fmt.Fprintf(os.Stderr, "lifeline: %v\n", runErr)
		return 1
	}
}
