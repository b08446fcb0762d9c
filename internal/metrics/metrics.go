package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts ledger activity and sync outcomes.
// All methods are safe on a nil *Metrics so callers can skip wiring in tests.
type Metrics struct {
	registry *prometheus.Registry

	DonationsCreated  prometheus.Counter
	DonationsRejected prometheus.Counter
	TransfersCreated  prometheus.Counter
	RequestsCreated   prometheus.Counter
	Consumptions      prometheus.Counter
	SessionsCreated   prometheus.Counter
	AlertsRaised      prometheus.Counter
	AlertsPublished   *prometheus.CounterVec
	SyncPushes        *prometheus.CounterVec
	SyncPulls         *prometheus.CounterVec
	StoreDuration     *prometheus.HistogramVec
}

// New registers every metric on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		DonationsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_donations_created_total",
			Help: "Donations published through the ledger",
		}),
		DonationsRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_donations_rejected_total",
			Help: "Donations refused because the identity already donated",
		}),
		TransfersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_transfers_created_total",
			Help: "Hospital stock transfers registered",
		}),
		RequestsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_requests_created_total",
			Help: "Blood requests recorded",
		}),
		Consumptions: f.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_inventory_consumed_total",
			Help: "Inventory records claimed by hospitals",
		}),
		SessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_sessions_created_total",
			Help: "Sessions registered",
		}),
		AlertsRaised: f.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_alerts_raised_total",
			Help: "Emergency alerts raised",
		}),
		AlertsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeline_alerts_published_total",
			Help: "Alert broadcasts by outcome",
		}, []string{"sink", "outcome"}),
		SyncPushes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeline_sync_pushes_total",
			Help: "Sync bridge pushes by kind and outcome (ok, error, dropped)",
		}, []string{"kind", "outcome"}),
		SyncPulls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeline_sync_pulls_total",
			Help: "Sync bridge pulls by outcome",
		}, []string{"outcome"}),
		StoreDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifeline_store_operation_duration_seconds",
			Help:    "Duration of document store operations",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncDonation() {
	if m != nil {
		m.DonationsCreated.Inc()
	}
}

func (m *Metrics) IncDonationRejected() {
	if m != nil {
		m.DonationsRejected.Inc()
	}
}

func (m *Metrics) IncTransfer() {
	if m != nil {
		m.TransfersCreated.Inc()
	}
}

func (m *Metrics) IncRequest() {
	if m != nil {
		m.RequestsCreated.Inc()
	}
}

func (m *Metrics) IncConsumption() {
	if m != nil {
		m.Consumptions.Inc()
	}
}

func (m *Metrics) IncSession() {
	if m != nil {
		m.SessionsCreated.Inc()
	}
}

func (m *Metrics) IncAlert() {
	if m != nil {
		m.AlertsRaised.Inc()
	}
}

// ObserveAlertPublish records a broadcast attempt on sink.
func (m *Metrics) ObserveAlertPublish(sink string, err error) {
	if m != nil {
		m.AlertsPublished.WithLabelValues(sink, outcome(err)).Inc()
	}
}

// ObserveSyncPush records the result of one outbox job. outcome is ok, error or dropped.
func (m *Metrics) ObserveSyncPush(kind, outcome string) {
	if m != nil {
		m.SyncPushes.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) ObserveSyncPull(err error) {
	if m != nil {
		m.SyncPulls.WithLabelValues(outcome(err)).Inc()
	}
}

// ObserveStore records how long op took. Call with time.Now() at the start.
func (m *Metrics) ObserveStore(op string, start time.Time) {
	if m != nil {
		m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
