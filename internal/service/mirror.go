package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/metrics"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
)

// Mirror is the server side of the sync contract: it stores records pushed by
// clients as-is, only filling a missing id or createdAt. No lock, no defaults.
type Mirror struct {
	store     store.Mutator
	retention domain.Retention
	metrics   *metrics.Metrics
	now       clock
}

func NewMirror(s store.Mutator, retention domain.Retention, m *metrics.Metrics) *Mirror {
	return &Mirror{store: s, retention: retention, metrics: m, now: time.Now}
}

func (m *Mirror) State(ctx context.Context) (domain.Document, error) {
	return m.store.Read(ctx)
}

func (m *Mirror) RecordInventory(ctx context.Context, rec domain.InventoryRecord) (domain.InventoryRecord, error) {
	if rec.ID == "" {
		rec.ID = newID(PrefixDonation)
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = m.now.stamp()
	}
	_, err := m.store.Update(ctx, func(doc *domain.Document) error {
		doc.Inventory = domain.Prepend(doc.Inventory, rec, m.retention.Inventory)
		return nil
	})
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("persist inventory: %w", err)
	}
	return rec, nil
}

func (m *Mirror) RecordRequest(ctx context.Context, rec domain.RequestRecord) (domain.RequestRecord, error) {
	if rec.ID == "" {
		rec.ID = newID(PrefixRequest)
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = m.now.stamp()
	}
	_, err := m.store.Update(ctx, func(doc *domain.Document) error {
		doc.Requests = domain.Prepend(doc.Requests, rec, m.retention.Requests)
		return nil
	})
	if err != nil {
		return domain.RequestRecord{}, fmt.Errorf("persist request: %w", err)
	}
	return rec, nil
}

func (m *Mirror) RecordSession(ctx context.Context, rec domain.SessionRecord) (domain.SessionRecord, error) {
	if rec.ID == "" {
		rec.ID = newID(PrefixSession)
	}
	_, err := m.store.Update(ctx, func(doc *domain.Document) error {
		doc.Sessions = domain.Prepend(doc.Sessions, rec, m.retention.Sessions)
		return nil
	})
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("persist session: %w", err)
	}
	return rec, nil
}

// Consume removes the inventory record with id and returns what remains.
// An unknown id changes nothing and is not counted.
func (m *Mirror) Consume(ctx context.Context, id string) ([]domain.InventoryRecord, error) {
	removed := false
	doc, err := m.store.Update(ctx, func(doc *domain.Document) error {
		kept := doc.Inventory[:0:0]
		for _, r := range doc.Inventory {
			if r.ID == id {
				removed = true
				continue
			}
			kept = append(kept, r)
		}
		doc.Inventory = kept
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persist consume: %w", err)
	}
	if removed {
		m.metrics.IncConsumption()
	}
	return doc.Inventory, nil
}

// ImportHospitals replaces the hospital reference data.
func (m *Mirror) ImportHospitals(ctx context.Context, hospitals []domain.HospitalRecord) (int, error) {
	if hospitals == nil {
		hospitals = []domain.HospitalRecord{}
	}
	_, err := m.store.Update(ctx, func(doc *domain.Document) error {
		doc.Hospitals = hospitals
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("persist hospitals: %w", err)
	}
	return len(hospitals), nil
}
