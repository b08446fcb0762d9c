// Command lifeline-seed loads hospital reference data into the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/common/logger"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/config"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/metrics"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/report"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/service"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
)

func main() {
	file := flag.String("file", "", "hospital data (.json or .xlsx)")
	template := flag.String("template", "", "write an empty XLSX import template to this path and exit")
	driver := flag.String("driver", "", "storage driver override (file|redis|postgres|sqlite)")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.NewLogger(cfg.Log.Level, "console", "lifeline-seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *template != "" {
		book, err := report.ExportHospitals(nil)
		if err != nil {
			log.Fatal("render template", zap.Error(err))
		}
		if err := os.WriteFile(*template, book, 0o644); err != nil {
			log.Fatal("write template", zap.Error(err))
		}
		log.Info("template written", zap.String("path", *template))
		return
	}
	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	hospitals, err := report.ReadHospitalsFile(*file)
	if err != nil {
		log.Fatal("read hospitals", zap.String("file", *file), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *driver != "" {
		cfg.Storage.Driver = *driver
	}
	backend, err := store.Open(ctx, store.Options{
		Driver:    cfg.Storage.Driver,
		DataPath:  cfg.Storage.DataPath,
		LocksPath: cfg.Storage.LocksPath,
		SQLite:    cfg.SQLite,
		Database:  cfg.Database,
		Redis:     cfg.Redis,
	}, log)
	if err != nil {
		log.Fatal("open storage", zap.Error(err))
	}
	defer backend.Close()

	n, err := service.NewMirror(backend.Documents, cfg.Retention, metrics.New()).ImportHospitals(ctx, hospitals)
	if err != nil {
		_ = backend.Close()
		log.Fatal("import hospitals", zap.Error(err))
	}
	log.Info("hospitals imported", zap.Int("count", n), zap.String("driver", backend.Driver))
}
