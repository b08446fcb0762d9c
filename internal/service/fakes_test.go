package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/metrics"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/notify"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 123_000_000, time.UTC)

func fixedClock() time.Time { return fixedNow }

// fakeBridge 记录所有推送
type fakeBridge struct {
	inventory []domain.InventoryRecord
	consumed  []string
	requests  []domain.RequestRecord
	sessions  []domain.SessionRecord
}

func (b *fakeBridge) PushInventory(r domain.InventoryRecord) { b.inventory = append(b.inventory, r) }
func (b *fakeBridge) PushConsume(id string) { b.consumed = append(b.consumed, id) }
func (b *fakeBridge) PushRequest(r domain.RequestRecord) { b.requests = append(b.requests, r) }
func (b *fakeBridge) PushSession(r domain.SessionRecord) { b.sessions = append(b.sessions, r) }
func (b *fakeBridge) Pull(context.Context) (*domain.Document, error) {
	return nil, errors.New("not used")
}

var errDiskFull = errors.New("disk full")

// failingStore fails every write.
type failingStore struct {
	store.DocumentStore
}

func (f failingStore) Write(context.Context, domain.Document) (domain.Document, error) {
	return domain.Document{}, errDiskFull
}

// failingLocks reads locks normally but cannot set them.
type failingLocks struct {
	store.LockStore
}

func (failingLocks) MarkDonated(context.Context, string) error { return errDiskFull }

type fakeNotifier struct {
	alerts []notify.Alert
	err    error
}

func (n *fakeNotifier) Notify(_ context.Context, a notify.Alert) error {
	n.alerts = append(n.alerts, a)
	return n.err
}

func (n *fakeNotifier) Name() string { return "fake" }

type fixture struct {
	store     *store.Guarded
	locks     *store.KVLockStore
	bridge    *fakeBridge
	metrics   *metrics.Metrics
	donations *DonationLedger
	requests  *RequestLedger
	sessions  *Sessions
	matcher   *Matcher
}

func newFixture(t *testing.T, retention domain.Retention) *fixture {
	t.Helper()
	kv := store.NewMemoryKV()
	f := &fixture{
		store:   store.NewGuarded(store.NewKVStore(kv)),
		locks:   store.NewKVLockStore(kv),
		bridge:  &fakeBridge{},
		metrics: metrics.New(),
	}
	logger := zap.NewNop()
	f.donations = NewDonationLedger(f.store, f.locks, f.bridge, retention.Inventory, f.metrics, logger)
	f.donations.now = fixedClock
	f.requests = NewRequestLedger(f.store, f.bridge, retention.Requests, f.metrics, logger)
	f.requests.now = fixedClock
	f.sessions = NewSessions(f.store, f.bridge, retention.Sessions, f.metrics, logger)
	f.matcher = NewMatcher(f.store)
	return f
}

func (f *fixture) seed(t *testing.T, mutate func(doc *domain.Document)) {
	t.Helper()
	_, err := f.store.Update(context.Background(), func(doc *domain.Document) error {
		mutate(doc)
		return nil
	})
	require.NoError(t, err)
}

func inventoryOf(types ...domain.BloodType) []domain.InventoryRecord {
	out := make([]domain.InventoryRecord, 0, len(types))
	for i, t := range types {
		out = append(out, domain.InventoryRecord{ID: string(rune('a' + i)), BloodType: t, Units: 1})
	}
	return out
}
