package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
)

func TestAddRequest_Defaults(t *testing.T) {
	f := newFixture(t, domain.DefaultRetention())

	var p RequestPayload
	require.NoError(t, json.Unmarshal([]byte(`{"bloodType":"AB-","units":"abc","city":"Nagpur","urgency":"High"}`), &p))

	res, err := f.requests.AddRequest(context.Background(), p, nil)
	require.NoError(t, err)

	rec := res.Record
	assert.True(t, strings.HasPrefix(rec.ID, PrefixRequest))
	assert.Equal(t, domain.Count(0), rec.Units)
	assert.Equal(t, "Hospital team", rec.RequestedBy)
	assert.Equal(t, "Verified contact", rec.Contact)
	assert.Equal(t, "High", rec.Urgency)
	assert.Equal(t, "2024-03-01T09:30:00.123Z", rec.CreatedAt)
	assert.Equal(t, []domain.RequestRecord{rec}, f.bridge.requests)
}

func TestAddRequest_ActorDefaults(t *testing.T) {
	f := newFixture(t, domain.DefaultRetention())
	actor := &domain.Actor{ID: "user-h", Name: "Dr. Rao", Organization: "Sassoon", Email: "rao@sassoon.example", Role: domain.RoleHospital}

	res, err := f.requests.AddRequest(context.Background(), RequestPayload{BloodType: domain.BloodTypeOPos, Units: 4}, actor)
	require.NoError(t, err)
	assert.Equal(t, "Sassoon", res.Record.RequestedBy)
	assert.Equal(t, "rao@sassoon.example", res.Record.Contact)
	assert.Equal(t, domain.Count(4), res.Record.Units)
}

func TestAddRequest_UnlimitedAndCapped(t *testing.T) {
	f := newFixture(t, domain.Retention{Inventory: 2, Requests: 2, Sessions: 2})
	ctx := context.Background()
	actor := &domain.Actor{ID: "user-1"}

	var ids []string
	for i := 0; i < 3; i++ {
		res, err := f.requests.AddRequest(ctx, RequestPayload{BloodType: domain.BloodTypeANeg, Units: 1}, actor)
		require.NoError(t, err)
		ids = append(ids, res.Record.ID)
	}

	doc, err := f.store.Read(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Requests, 2)
	assert.Equal(t, ids[2], doc.Requests[0].ID)
	assert.Equal(t, ids[1], doc.Requests[1].ID)
}

func TestAddRequest_PersistFailure(t *testing.T) {
	bridge := &fakeBridge{}
	l := NewRequestLedger(store.NewGuarded(failingStore{store.NewKVStore(store.NewMemoryKV())}), bridge, 10, nil, zap.NewNop())

	_, err := l.AddRequest(context.Background(), RequestPayload{BloodType: domain.BloodTypeONeg}, nil)
	require.ErrorIs(t, err, errDiskFull)
	assert.Empty(t, bridge.requests)
}
