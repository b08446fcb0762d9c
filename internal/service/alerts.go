package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/metrics"
	"github.com/avadhootsavle/hackispiration-hackathon/internal/notify"
)

// Alert defaults.
const (
	UrgencyCritical    = "Critical"
	DefaultAlertReason = "Emergency alert"
	alertPreviewSize   = 3
)

// AlertPayload 紧急告警表单
type AlertPayload struct {
	BloodType      domain.BloodType `json:"bloodType"`
	Units          domain.Count     `json:"units"`
	City           string           `json:"city"`
	ClinicalReason string           `json:"clinicalReason,omitempty"`
	RequestedBy    string           `json:"requestedBy,omitempty"`
	Contact        string           `json:"contact,omitempty"`
}

// AlertResult carries the match count, the first few matches and the request.
type AlertResult struct {
	Total   int                      `json:"total"`
	Preview []domain.InventoryRecord `json:"preview"`
	Request domain.RequestRecord     `json:"request"`
}

// Alerts raises emergency requests and broadcasts them.
type Alerts struct {
	matcher  *Matcher
	requests *RequestLedger
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewAlerts(matcher *Matcher, requests *RequestLedger, n notify.Notifier, m *metrics.Metrics, logger *zap.Logger) *Alerts {
	if n == nil {
		n = notify.Nop{}
	}
	return &Alerts{matcher: matcher, requests: requests, notifier: n, metrics: m, logger: logger}
}

// RaiseAlert 查找匹配库存，记录 Critical 请求，并尽力广播
func (a *Alerts) RaiseAlert(ctx context.Context, p AlertPayload, actor *domain.Actor) (AlertResult, error) {
	var preds []InventoryPredicate
	if strings.TrimSpace(p.City) != "" {
		preds = append(preds, InCity(p.City))
	}
	matches, err := a.matcher.FindMatches(ctx, p.BloodType, preds...)
	if err != nil {
		return AlertResult{}, err
	}

	res, err := a.requests.AddRequest(ctx, RequestPayload{
		BloodType:      p.BloodType,
		Units:          p.Units,
		City:           p.City,
		Urgency:        UrgencyCritical,
		ClinicalReason: domain.FirstNonEmpty(p.ClinicalReason, DefaultAlertReason),
		RequestedBy:    p.RequestedBy,
		Contact:        p.Contact,
	}, actor)
	if err != nil {
		return AlertResult{}, err
	}
	a.metrics.IncAlert()

	rec := res.Record
	alert := notify.Alert{
		RequestID:      rec.ID,
		BloodType:      rec.BloodType,
		Units:          rec.Units,
		City:           rec.City,
		Urgency:        rec.Urgency,
		ClinicalReason: rec.ClinicalReason,
		RequestedBy:    rec.RequestedBy,
		Contact:        rec.Contact,
		Matches:        len(matches),
		RaisedAt:       rec.CreatedAt,
	}
	err = a.notifier.Notify(ctx, alert)
	a.metrics.ObserveAlertPublish(a.notifier.Name(), err)
	if err != nil {
		a.logger.Warn("alert broadcast failed",
			zap.String("sink", a.notifier.Name()),
			zap.String("request_id", rec.ID),
			zap.Error(err),
		)
	}

	preview := matches
	if len(preview) > alertPreviewSize {
		preview = preview[:alertPreviewSize]
	}
	return AlertResult{Total: len(matches), Preview: preview, Request: rec}, nil
}
