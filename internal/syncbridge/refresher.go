package syncbridge

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
)

// Refresher applies pulled documents to a local store. Inventory, requests
// and hospitals are replaced; local sessions are kept.
type Refresher struct {
	bridge  Bridge
	store   store.Mutator
	logger  *zap.Logger
	timeout time.Duration
	cron    *cron.Cron
}

func NewRefresher(b Bridge, s store.Mutator, timeout time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{bridge: b, store: s, logger: logger, timeout: timeout}
}

// Refresh pulls once. It reports whether anything was applied; a failed pull
// leaves the store untouched and is returned for logging only.
func (r *Refresher) Refresh(ctx context.Context) (bool, error) {
	remote, err := r.bridge.Pull(ctx)
	if err != nil {
		return false, err
	}
	if remote == nil {
		return false, nil
	}
	_, err = r.store.Update(ctx, func(doc *domain.Document) error {
		doc.Inventory = remote.Inventory
		doc.Requests = remote.Requests
		doc.Hospitals = remote.Hospitals
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Start schedules Refresh with a cron spec (standard 5 fields or descriptors
// such as "@every 1m").
func (r *Refresher) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, r.tick); err != nil {
		return err
	}
	r.cron = c
	c.Start()
	r.logger.Info("sync refresher scheduled", zap.String("schedule", spec))
	return nil
}

// Stop halts the schedule and waits for a running refresh.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

func (r *Refresher) tick() {
	timeout := r.timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	applied, err := r.Refresh(ctx)
	if err != nil {
		r.logger.Warn("scheduled sync pull failed", zap.Error(err))
		return
	}
	if applied {
		r.logger.Debug("scheduled sync pull applied")
	}
}
