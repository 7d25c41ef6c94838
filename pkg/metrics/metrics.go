package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// HistogramBuckets are millisecond buckets shared by request and business latencies.
var HistogramBuckets = []float64{
	// --- Fast (0 - 500ms) ---
	5, 10, 25, 50, 75, 100, 150, 200, 300, 400, 500,

	// --- Medium (500ms - 2s) ---
	750, 1000, 1500, 2000,

	// --- Slow (2s - 30s) ---
	3000, 5000, 10000, 20000, 30000,
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	case "counter":
		metric = prometheus.NewCounter(
			prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
		)
	case "gauge":
		metric = prometheus.NewGauge(
			prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
		)
	case "histogram_vec":
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets},
			m.Args,
		)
	case "summary_vec":
		metric = prometheus.NewSummaryVec(
			prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	}
	return metric
}

var (
	commandTotal = &Metric{
		ID:          "cmdCnt",
		Name:        "command_total",
		Description: "Billing commands processed, partitioned by command and outcome (applied, redundant, error).",
		Type:        "counter_vec",
		Args:        []string{"command", "outcome"},
	}
	reconcileDur = &Metric{
		ID:          "reconcileDur",
		Name:        "reconcile_dur_ms",
		Description: "Reconciliation cycle latency in milliseconds, including the flush.",
		Type:        "histogram_vec",
		Args:        []string{"trigger"},
	}
	reconcileChanges = &Metric{
		ID:          "reconcileChg",
		Name:        "reconcile_changes_total",
		Description: "Records changed by reconciliation, partitioned by kind (generated, archived, repriced, pruned, counts).",
		Type:        "counter_vec",
		Args:        []string{"kind"},
	}
	flushFailures = &Metric{
		ID:          "flushErr",
		Name:        "flush_failures_total",
		Description: "Failed write-behind flushes; the delta is retried on the next command.",
		Type:        "counter",
	}
	dirtyState = &Metric{
		ID:          "dirty",
		Name:        "dirty_state",
		Description: "1 while the in-memory snapshot holds changes not yet persisted.",
		Type:        "gauge",
	}
)

// Billing holds the business metrics of the billing service.
type Billing struct {
	commands      *prometheus.CounterVec
	reconcileDur  *prometheus.HistogramVec
	changes       *prometheus.CounterVec
	flushFailures prometheus.Counter
	dirty         prometheus.Gauge
}

// NewBilling registers the billing collectors with reg. A nil reg uses the
// default registerer.
func NewBilling(reg prometheus.Registerer) (*Billing, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	b := &Billing{
		commands:      NewMetric(commandTotal, "billing").(*prometheus.CounterVec),
		reconcileDur:  NewMetric(reconcileDur, "billing").(*prometheus.HistogramVec),
		changes:       NewMetric(reconcileChanges, "billing").(*prometheus.CounterVec),
		flushFailures: NewMetric(flushFailures, "billing").(prometheus.Counter),
		dirty:         NewMetric(dirtyState, "billing").(prometheus.Gauge),
	}
	for _, c := range []prometheus.Collector{b.commands, b.reconcileDur, b.changes, b.flushFailures, b.dirty} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// NopBilling returns collectors that are never registered, for tests and tools.
func NopBilling() *Billing {
	b, _ := NewBilling(prometheus.NewRegistry())
	return b
}

func (b *Billing) Command(command, outcome string) {
	b.commands.WithLabelValues(command, outcome).Inc()
}

func (b *Billing) ObserveReconcile(trigger string, start time.Time) {
	b.reconcileDur.WithLabelValues(trigger).Observe(MillisecondsSince(start))
}

func (b *Billing) Changes(kind string, n int) {
	if n > 0 {
		b.changes.WithLabelValues(kind).Add(float64(n))
	}
}

func (b *Billing) FlushFailed() {
	b.flushFailures.Inc()
}

func (b *Billing) SetDirty(dirty bool) {
	if dirty {
		b.dirty.Set(1)
		return
	}
	b.dirty.Set(0)
}

// MillisecondsSince returns the elapsed time since start in milliseconds.
func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

const (
	RefererKey = "X-Referer"
)

// Module provides Billing registered with the default registerer, which the
// /metrics listener serves.
var Module = fx.Options(
	fx.Provide(func() (*Billing, error) { return NewBilling(prometheus.DefaultRegisterer) }),
)
