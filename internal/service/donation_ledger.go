package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/metrics"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/syncbridge"
)

// DonationPayload 捐献/调拨表单；未填写的字段由 actor 或默认值补齐
type DonationPayload struct {
	BloodType domain.BloodType `json:"bloodType"`
	Units     domain.Count     `json:"units"`
	City      string           `json:"city"`
	Hospital  string           `json:"hospital,omitempty"`
	ReadyIn   string           `json:"readyIn,omitempty"`
	Contact   string           `json:"contact,omitempty"`
	Status    string           `json:"status,omitempty"`
}

// DonationResult is the inventory after the write plus the new record.
type DonationResult struct {
	Inventory []domain.InventoryRecord `json:"inventory"`
	Record    domain.InventoryRecord   `json:"record"`
}

// DonationLedger owns inventory writes and the one-donation-per-identity lock.
type DonationLedger struct {
	mu      sync.Mutex
	store   store.Mutator
	locks   store.LockStore
	bridge  syncbridge.Bridge
	limit   int
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     clock
}

// NewDonationLedger 创建捐献台账；limit 为库存保留上限
func NewDonationLedger(s store.Mutator, locks store.LockStore, bridge syncbridge.Bridge, limit int, m *metrics.Metrics, logger *zap.Logger) *DonationLedger {
	if bridge == nil {
		bridge = syncbridge.NopBridge{}
	}
	return &DonationLedger{
		store:   s,
		locks:   locks,
		bridge:  bridge,
		limit:   limit,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// AddDonation publishes one donation for actor (nil = guest). A second call
// for the same identity fails with domain.ErrAlreadyDonated and writes nothing.
func (l *DonationLedger) AddDonation(ctx context.Context, p DonationPayload, actor *domain.Actor) (DonationResult, error) {
	identity := domain.IdentityOf(actor)

	// 检查锁、写库存、设锁必须作为一个整体
	l.mu.Lock()
	defer l.mu.Unlock()

	donated, err := l.locks.HasDonated(ctx, identity)
	if err != nil {
		return DonationResult{}, fmt.Errorf("check donation lock: %w", err)
	}
	if donated {
		l.metrics.IncDonationRejected()
		l.logger.Info("donation rejected: identity already donated", zap.String("identity", identity))
		return DonationResult{}, domain.ErrAlreadyDonated
	}

	rec := l.buildRecord(p, actor)
	doc, err := l.prepend(ctx, rec)
	if err != nil {
		return DonationResult{}, fmt.Errorf("persist donation: %w", err)
	}
	if err := l.locks.MarkDonated(ctx, identity); err != nil {
		// 设锁失败则撤回刚写入的记录
		if _, _, rbErr := l.remove(ctx, rec.ID); rbErr != nil {
			l.logger.Error("donation rollback failed", zap.String("id", rec.ID), zap.Error(rbErr))
		}
		return DonationResult{}, fmt.Errorf("set donation lock: %w", err)
	}

	l.bridge.PushInventory(rec)
	l.metrics.IncDonation()
	l.logger.Info("donation published",
		zap.String("id", rec.ID),
		zap.String("blood_type", string(rec.BloodType)),
		zap.Int("units", int(rec.Units)),
		zap.String("identity", identity),
	)
	return DonationResult{Inventory: doc.Inventory, Record: rec}, nil
}

// AddTransfer registers hospital stock. Same record as a donation, but the
// donation lock is neither checked nor set.
func (l *DonationLedger) AddTransfer(ctx context.Context, p DonationPayload, actor *domain.Actor) (DonationResult, error) {
	rec := l.buildRecord(p, actor)
	doc, err := l.prepend(ctx, rec)
	if err != nil {
		return DonationResult{}, fmt.Errorf("persist transfer: %w", err)
	}
	l.bridge.PushInventory(rec)
	l.metrics.IncTransfer()
	l.logger.Info("transfer registered",
		zap.String("id", rec.ID),
		zap.String("blood_type", string(rec.BloodType)),
		zap.String("hospital", rec.Hospital),
	)
	return DonationResult{Inventory: doc.Inventory, Record: rec}, nil
}

// HasDonated reports the lock for actor's identity.
func (l *DonationLedger) HasDonated(ctx context.Context, actor *domain.Actor) (bool, error) {
	return l.locks.HasDonated(ctx, domain.IdentityOf(actor))
}

// ConsumeDonation removes the record with id; an unknown id changes nothing.
// Returns the remaining inventory.
func (l *DonationLedger) ConsumeDonation(ctx context.Context, id string) ([]domain.InventoryRecord, error) {
	doc, removed, err := l.remove(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("persist consume: %w", err)
	}
	l.bridge.PushConsume(id)
	if removed {
		l.metrics.IncConsumption()
		l.logger.Info("inventory consumed", zap.String("id", id))
	}
	return doc.Inventory, nil
}

func (l *DonationLedger) remove(ctx context.Context, id string) (domain.Document, bool, error) {
	removed := false
	doc, err := l.store.Update(ctx, func(doc *domain.Document) error {
		kept := make([]domain.InventoryRecord, 0, len(doc.Inventory))
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
	return doc, removed, err
}

func (l *DonationLedger) prepend(ctx context.Context, rec domain.InventoryRecord) (domain.Document, error) {
	start := time.Now()
	defer l.metrics.ObserveStore("inventory_prepend", start)
	return l.store.Update(ctx, func(doc *domain.Document) error {
		doc.Inventory = domain.Prepend(doc.Inventory, rec, l.limit)
		return nil
	})
}

func (l *DonationLedger) buildRecord(p DonationPayload, actor *domain.Actor) domain.InventoryRecord {
	return domain.InventoryRecord{
		ID:        newID(PrefixDonation),
		BloodType: normalizeType(p.BloodType),
		Units:     p.Units.OrDefault(1),
		City:      p.City,
		Hospital:  domain.FirstNonEmpty(p.Hospital, actor.DisplayOrg(), "Verified donor"),
		ReadyIn:   domain.FirstNonEmpty(p.ReadyIn, "Available"),
		Contact:   domain.FirstNonEmpty(p.Contact, actor.EmailOrEmpty(), "On file"),
		Status:    domain.FirstNonEmpty(p.Status, "Ready"),
		AddedBy:   actor.Attribution(),
		CreatedAt: l.now.stamp(),
	}
}
