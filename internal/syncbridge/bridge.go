// Package syncbridge reconciles a local document cache with the remote API.
// Pushes are fire-and-forget; the local cache stays authoritative.
package syncbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/metrics"
)

// Bridge forwards local writes to the remote store and pulls its document.
// Push methods only enqueue; they never block and never report errors.
type Bridge interface {
	PushInventory(rec domain.InventoryRecord)
	PushConsume(id string)
	PushRequest(rec domain.RequestRecord)
	PushSession(rec domain.SessionRecord)
	Pull(ctx context.Context) (*domain.Document, error)
}

// NopBridge is used when no remote is configured. Pull returns (nil, nil).
type NopBridge struct{}

func (NopBridge) PushInventory(domain.InventoryRecord) {}
func (NopBridge) PushConsume(string) {}
func (NopBridge) PushRequest(domain.RequestRecord) {}
func (NopBridge) PushSession(domain.SessionRecord) {}
func (NopBridge) Pull(context.Context) (*domain.Document, error) { return nil, nil }

// Options HTTPBridge 配置
type Options struct {
	BaseURL   string        // e.g. http://host:4000/api
	Timeout   time.Duration // per request
	QueueSize int           // outbox capacity
}

type job struct {
	kind string
	path string
	body any
}

// HTTPBridge pushes through a bounded outbox drained by one worker.
// A full outbox drops the job.
type HTTPBridge struct {
	client  *resty.Client
	logger  *zap.Logger
	metrics *metrics.Metrics

	// mu 保证 Close 之后不会再有 job 进入 outbox
	mu     sync.RWMutex
	closed bool
	jobs   chan job
	quit   chan struct{}
	done   chan struct{}
}

// NewHTTPBridge 创建同步桥并启动 outbox worker
func NewHTTPBridge(opts Options, m *metrics.Metrics, logger *zap.Logger) *HTTPBridge {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(0). // 失败不重试
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	b := &HTTPBridge{
		client:  client,
		logger:  logger,
		metrics: m,
		jobs:    make(chan job, opts.QueueSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *HTTPBridge) PushInventory(rec domain.InventoryRecord) {
	b.enqueue(job{kind: "inventory", path: "/inventory", body: rec})
}

func (b *HTTPBridge) PushConsume(id string) {
	b.enqueue(job{kind: "consume", path: "/inventory/consume", body: map[string]string{"id": id}})
}

func (b *HTTPBridge) PushRequest(rec domain.RequestRecord) {
	b.enqueue(job{kind: "request", path: "/requests", body: rec})
}

func (b *HTTPBridge) PushSession(rec domain.SessionRecord) {
	b.enqueue(job{kind: "session", path: "/session", body: rec})
}

// Pull fetches the remote document. Callers treat an error as "stay on cache".
func (b *HTTPBridge) Pull(ctx context.Context) (*domain.Document, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Cache-Control", "no-store").
		Get("/state")
	if err == nil && resp.IsError() {
		err = fmt.Errorf("remote returned %d", resp.StatusCode())
	}
	if err != nil {
		b.metrics.ObserveSyncPull(err)
		return nil, fmt.Errorf("pull state: %w", err)
	}

	doc := domain.NewDocument()
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		b.metrics.ObserveSyncPull(err)
		return nil, fmt.Errorf("decode state: %w", err)
	}
	doc.Normalize()
	b.metrics.ObserveSyncPull(nil)
	return &doc, nil
}

// Close stops accepting jobs and waits until the outbox drains or ctx ends.
func (b *HTTPBridge) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.quit)
	}
	b.mu.Unlock()
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *HTTPBridge) enqueue(j job) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.drop(j, "closed")
		return
	}
	select {
	case b.jobs <- j:
	default:
		b.drop(j, "outbox full")
	}
}

func (b *HTTPBridge) drop(j job, reason string) {
	b.logger.Warn("sync push dropped", zap.String("kind", j.kind), zap.String("reason", reason))
	b.metrics.ObserveSyncPush(j.kind, "dropped")
}

func (b *HTTPBridge) run() {
	defer close(b.done)
	for {
		select {
		case j := <-b.jobs:
			b.send(j)
		case <-b.quit:
			for {
				select {
				case j := <-b.jobs:
					b.send(j)
				default:
					return
				}
			}
		}
	}
}

func (b *HTTPBridge) send(j job) {
	resp, err := b.client.R().SetBody(j.body).Post(j.path)
	if err == nil && resp.IsError() {
		err = fmt.Errorf("remote returned %d", resp.StatusCode())
	}
	if err != nil {
		b.logger.Warn("sync push failed", zap.String("kind", j.kind), zap.Error(err))
		b.metrics.ObserveSyncPush(j.kind, "error")
		return
	}
	b.metrics.ObserveSyncPush(j.kind, "ok")
}
