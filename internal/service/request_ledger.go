package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/metrics"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/store"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/syncbridge"
)

// RequestPayload 紧急用血请求表单
type RequestPayload struct {
	BloodType      domain.BloodType `json:"bloodType"`
	Units          domain.Count     `json:"units"`
	City           string           `json:"city"`
	Urgency        string           `json:"urgency,omitempty"`
	ClinicalReason string           `json:"clinicalReason,omitempty"`
	RequestedBy    string           `json:"requestedBy,omitempty"`
	Contact        string           `json:"contact,omitempty"`
}

type RequestResult struct {
	Requests []domain.RequestRecord `json:"requests"`
	Record   domain.RequestRecord   `json:"record"`
}

// RequestLedger appends blood requests. Any actor may submit any number.
type RequestLedger struct {
	store   store.Mutator
	bridge  syncbridge.Bridge
	limit   int
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     clock
}

func NewRequestLedger(s store.Mutator, bridge syncbridge.Bridge, limit int, m *metrics.Metrics, logger *zap.Logger) *RequestLedger {
	if bridge == nil {
		bridge = syncbridge.NopBridge{}
	}
	return &RequestLedger{store: s, bridge: bridge, limit: limit, metrics: m, logger: logger, now: time.Now}
}

// AddRequest records p. Units are taken as given (non-numeric input is 0).
func (l *RequestLedger) AddRequest(ctx context.Context, p RequestPayload, actor *domain.Actor) (RequestResult, error) {
	rec := domain.RequestRecord{
		ID:             newID(PrefixRequest),
		BloodType:      normalizeType(p.BloodType),
		Units:          p.Units,
		City:           p.City,
		Urgency:        p.Urgency,
		ClinicalReason: p.ClinicalReason,
		RequestedBy:    domain.FirstNonEmpty(p.RequestedBy, actor.DisplayOrg(), "Hospital team"),
		Contact:        domain.FirstNonEmpty(p.Contact, actor.EmailOrEmpty(), "Verified contact"),
		CreatedAt:      l.now.stamp(),
	}

	start := time.Now()
	doc, err := l.store.Update(ctx, func(doc *domain.Document) error {
		doc.Requests = domain.Prepend(doc.Requests, rec, l.limit)
		return nil
	})
	l.metrics.ObserveStore("requests_prepend", start)
	if err != nil {
		return RequestResult{}, fmt.Errorf("persist request: %w", err)
	}

	l.bridge.PushRequest(rec)
	l.metrics.IncRequest()
	l.logger.Info("request recorded",
		zap.String("id", rec.ID),
		zap.String("blood_type", string(rec.BloodType)),
		zap.String("urgency", rec.Urgency),
		zap.String("city", rec.City),
	)
	return RequestResult{Requests: doc.Requests, Record: rec}, nil
}
