package service

import (
	"context"
	"strings"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/geo"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
)

// InventoryPredicate narrows FindMatches beyond compatibility.
type InventoryPredicate func(domain.InventoryRecord) bool

// InCity keeps records whose city equals city, ignoring case and surrounding space.
func InCity(city string) InventoryPredicate {
	want := strings.TrimSpace(city)
	return func(r domain.InventoryRecord) bool {
		return strings.EqualFold(strings.TrimSpace(r.City), want)
	}
}

// MinUnits keeps records with at least n units.
func MinUnits(n int) InventoryPredicate {
	return func(r domain.InventoryRecord) bool { return int(r.Units) >= n }
}

// Matcher is read-only over the store.
type Matcher struct {
	store store.DocumentStore
}

func NewMatcher(s store.DocumentStore) *Matcher {
	return &Matcher{store: s}
}

// FindMatches returns inventory that can serve needed, in store order.
func (m *Matcher) FindMatches(ctx context.Context, needed domain.BloodType, preds ...InventoryPredicate) ([]domain.InventoryRecord, error) {
	doc, err := m.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return MatchInventory(doc.Inventory, normalizeType(needed), preds...), nil
}

// MatchInventory is the pure part of FindMatches.
func MatchInventory(inventory []domain.InventoryRecord, needed domain.BloodType, preds ...InventoryPredicate) []domain.InventoryRecord {
	out := make([]domain.InventoryRecord, 0, len(inventory))
next:
	for _, r := range inventory {
		if !domain.IsCompatible(r.BloodType, needed) {
			continue
		}
		for _, p := range preds {
			if !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// FindHospitalsByType returns hospitals stocking any type that can serve
// needed. An empty needed returns every hospital.
func (m *Matcher) FindHospitalsByType(ctx context.Context, needed domain.BloodType) ([]domain.HospitalRecord, error) {
	return m.SearchHospitals(ctx, HospitalQuery{BloodType: needed})
}

// HospitalQuery 医院检索条件；零值字段不参与过滤
type HospitalQuery struct {
	BloodType domain.BloodType
	City      string // exact, case-insensitive
	Text      string // substring of name or bank partner
	Near      string // base city for nearest-first ordering
}

func (m *Matcher) SearchHospitals(ctx context.Context, q HospitalQuery) ([]domain.HospitalRecord, error) {
	doc, err := m.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	needed := normalizeType(q.BloodType)
	city := strings.TrimSpace(q.City)
	text := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]domain.HospitalRecord, 0, len(doc.Hospitals))
	for _, h := range doc.Hospitals {
		if needed != "" && !stocksFor(h, needed) {
			continue
		}
		if city != "" && !strings.EqualFold(strings.TrimSpace(h.City), city) {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(h.Name), text) &&
			!strings.Contains(strings.ToLower(h.BankPartner), text) {
			continue
		}
		out = append(out, h)
	}
	if q.Near != "" {
		geo.SortByDistance(out, func(h domain.HospitalRecord) string { return h.City }, geo.CoordsForCity(q.Near))
	}
	return out, nil
}

// stocksFor uses the donor->recipient direction, same as inventory matching.
func stocksFor(h domain.HospitalRecord, needed domain.BloodType) bool {
	for _, t := range h.ReadyTypes {
		if domain.IsCompatible(t, needed) {
			return true
		}
	}
	return false
}
