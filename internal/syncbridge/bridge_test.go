package syncbridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/metrics"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
)

type recorded struct {
	path string
	body string
}

type remote struct {
	mu    sync.Mutex
	calls []recorded
	state string
	code  int
}

func (r *remote) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.calls = append(r.calls, recorded{path: req.URL.Path, body: string(body)})
		code, state := r.code, r.state
		r.mu.Unlock()
		if code == 0 {
			code = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if req.URL.Path == "/api/state" {
			_, _ = io.WriteString(w, state)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	})
}

func (r *remote) snapshot() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.calls...)
}

func TestHTTPBridge_PushesInOrder(t *testing.T) {
	rm := &remote{}
	srv := httptest.NewServer(rm.handler())
	defer srv.Close()

	m := metrics.New()
	b := NewHTTPBridge(Options{BaseURL: srv.URL + "/api", QueueSize: 8}, m, zap.NewNop())

	b.PushInventory(domain.InventoryRecord{ID: "don-1", BloodType: domain.BloodTypeONeg, Units: 1})
	b.PushConsume("don-1")
	b.PushRequest(domain.RequestRecord{ID: "req-1"})
	b.PushSession(domain.SessionRecord{ID: "user-1", Name: "Asha"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, b.Close(ctx))

	calls := rm.snapshot()
	require.Len(t, calls, 4)
	assert.Equal(t, "/api/inventory", calls[0].path)
	assert.Equal(t, "/api/inventory/consume", calls[1].path)
	assert.JSONEq(t, `{"id":"don-1"}`, calls[1].body)
	assert.Equal(t, "/api/requests", calls[2].path)
	assert.Equal(t, "/api/session", calls[3].path)

	var rec domain.InventoryRecord
	require.NoError(t, json.Unmarshal([]byte(calls[0].body), &rec))
	assert.Equal(t, "don-1", rec.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncPushes.WithLabelValues("inventory", "ok")))
}

func TestHTTPBridge_FailuresAreCounted(t *testing.T) {
	rm := &remote{code: http.StatusInternalServerError}
	srv := httptest.NewServer(rm.handler())
	defer srv.Close()

	m := metrics.New()
	b := NewHTTPBridge(Options{BaseURL: srv.URL + "/api"}, m, zap.NewNop())
	b.PushRequest(domain.RequestRecord{ID: "req-1"})
	require.NoError(t, b.Close(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncPushes.WithLabelValues("request", "error")))
	require.Len(t, rm.snapshot(), 1)
}

func TestHTTPBridge_FullOutboxDropsWithoutBlocking(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	m := metrics.New()
	b := NewHTTPBridge(Options{BaseURL: srv.URL, QueueSize: 1, Timeout: 5 * time.Second}, m, zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.PushConsume("don-x")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("push blocked on a full outbox")
	}
	close(release)
	require.NoError(t, b.Close(context.Background()))

	// 最多 1 个在途 + 1 个排队，其余全部丢弃
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.SyncPushes.WithLabelValues("consume", "dropped")), 8.0)
}

func TestHTTPBridge_PushAfterCloseIsDropped(t *testing.T) {
	rm := &remote{}
	srv := httptest.NewServer(rm.handler())
	defer srv.Close()

	b := NewHTTPBridge(Options{BaseURL: srv.URL}, nil, zap.NewNop())
	require.NoError(t, b.Close(context.Background()))
	require.NoError(t, b.Close(context.Background()))

	b.PushConsume("don-1")
	assert.Empty(t, rm.snapshot())
}

func TestHTTPBridge_PushesRacingCloseAreAllAccounted(t *testing.T) {
	rm := &remote{}
	srv := httptest.NewServer(rm.handler())
	defer srv.Close()

	m := metrics.New()
	b := NewHTTPBridge(Options{BaseURL: srv.URL, QueueSize: 256}, m, zap.NewNop())

	const pushers, perPusher = 8, 20
	var wg sync.WaitGroup
	for i := 0; i < pushers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perPusher; j++ {
				b.PushConsume("don-x")
			}
		}()
	}
	require.NoError(t, b.Close(context.Background()))
	wg.Wait()

	sent := testutil.ToFloat64(m.SyncPushes.WithLabelValues("consume", "ok"))
	dropped := testutil.ToFloat64(m.SyncPushes.WithLabelValues("consume", "dropped"))
	assert.Equal(t, float64(pushers*perPusher), sent+dropped)
	assert.Len(t, rm.snapshot(), int(sent))
}

func TestHTTPBridge_Pull(t *testing.T) {
	rm := &remote{state: `{"inventory":[{"id":"don-1","bloodType":"O-","units":"2"}],"hospitals":null}`}
	srv := httptest.NewServer(rm.handler())
	defer srv.Close()

	b := NewHTTPBridge(Options{BaseURL: srv.URL + "/api"}, nil, zap.NewNop())
	defer b.Close(context.Background())

	doc, err := b.Pull(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Inventory, 1)
	assert.Equal(t, domain.Count(2), doc.Inventory[0].Units)
	assert.NotNil(t, doc.Hospitals)
	assert.NotNil(t, doc.Requests)
}

func TestHTTPBridge_PullNon2xx(t *testing.T) {
	rm := &remote{code: http.StatusBadGateway}
	srv := httptest.NewServer(rm.handler())
	defer srv.Close()

	m := metrics.New()
	b := NewHTTPBridge(Options{BaseURL: srv.URL + "/api"}, m, zap.NewNop())
	defer b.Close(context.Background())

	_, err := b.Pull(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncPulls.WithLabelValues("error")))
}

func TestRefresher_KeepsLocalSessions(t *testing.T) {
	rm := &remote{state: `{"inventory":[{"id":"don-9","bloodType":"A+","units":1}],"requests":[],"hospitals":[{"id":"h-1","name":"Sahyadri","city":"Pune","readyTypes":["O+"]}],"sessions":[{"id":"user-remote"}]}`}
	srv := httptest.NewServer(rm.handler())
	defer srv.Close()

	b := NewHTTPBridge(Options{BaseURL: srv.URL + "/api"}, nil, zap.NewNop())
	defer b.Close(context.Background())

	local := store.NewGuarded(store.NewKVStore(store.NewMemoryKV()))
	ctx := context.Background()
	seed := domain.NewDocument()
	seed.Inventory = []domain.InventoryRecord{{ID: "don-local"}}
	seed.Sessions = []domain.SessionRecord{{ID: "user-local"}}
	_, err := local.Write(ctx, seed)
	require.NoError(t, err)

	applied, err := NewRefresher(b, local, time.Second, zap.NewNop()).Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, applied)

	doc, err := local.Read(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Inventory, 1)
	assert.Equal(t, "don-9", doc.Inventory[0].ID)
	require.Len(t, doc.Hospitals, 1)
	require.Len(t, doc.Sessions, 1)
	assert.Equal(t, "user-local", doc.Sessions[0].ID)
}

func TestRefresher_FailedPullLeavesCache(t *testing.T) {
	rm := &remote{code: http.StatusServiceUnavailable}
	srv := httptest.NewServer(rm.handler())
	defer srv.Close()

	b := NewHTTPBridge(Options{BaseURL: srv.URL + "/api"}, nil, zap.NewNop())
	defer b.Close(context.Background())

	local := store.NewGuarded(store.NewKVStore(store.NewMemoryKV()))
	seed := domain.NewDocument()
	seed.Inventory = []domain.InventoryRecord{{ID: "don-local"}}
	_, err := local.Write(context.Background(), seed)
	require.NoError(t, err)

	applied, err := NewRefresher(b, local, time.Second, zap.NewNop()).Refresh(context.Background())
	require.Error(t, err)
	assert.False(t, applied)

	doc, err := local.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "don-local", doc.Inventory[0].ID)
}

func TestRefresher_NopBridge(t *testing.T) {
	local := store.NewGuarded(store.NewKVStore(store.NewMemoryKV()))
	r := NewRefresher(NopBridge{}, local, time.Second, zap.NewNop())

	applied, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, r.Start("@every 1h"))
	r.Stop()
	require.Error(t, NewRefresher(NopBridge{}, local, 0, zap.NewNop()).Start("not a schedule"))
}
