package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for lead writes, mirroring, reminders and imports.
type LeadMetrics struct {
	writesTotal     *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec
	mirrorTotal     *prometheus.CounterVec
	remindersTotal  *prometheus.CounterVec
	importRowsTotal *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		writesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nectar",
			Subsystem: "leads",
			Name:      "writes_total",
			Help:      "Total lead store writes by operation and result",
		}, []string{"op", "result"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nectar",
			Subsystem: "leads",
			Name:      "store_latency_seconds",
			Help:      "Latency of record store calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		mirrorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nectar",
			Subsystem: "sheetsync",
			Name:      "deliveries_total",
			Help:      "Sheet mirror deliveries by transport and result",
		}, []string{"transport", "result"}),
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nectar",
			Subsystem: "reminders",
			Name:      "sent_total",
			Help:      "Follow-up reminders by result",
		}, []string{"result"}),
		importRowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nectar",
			Subsystem: "leads",
			Name:      "import_rows_total",
			Help:      "CSV import rows by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.writesTotal, m.storeLatency, m.mirrorTotal, m.remindersTotal, m.importRowsTotal)
	return m
}

func (m *LeadMetrics) ObserveWrite(op, result string) {
	if m == nil {
		return
	}
	m.writesTotal.WithLabelValues(op, result).Inc()
}

func (m *LeadMetrics) ObserveStoreLatency(op string, seconds float64) {
	if m == nil {
		return
	}
	m.storeLatency.WithLabelValues(op).Observe(seconds)
}

func (m *LeadMetrics) ObserveMirror(transport, result string) {
	if m == nil {
		return
	}
	m.mirrorTotal.WithLabelValues(transport, result).Inc()
}

func (m *LeadMetrics) ObserveReminder(result string) {
	if m == nil {
		return
	}
	m.remindersTotal.WithLabelValues(result).Inc()
}

func (m *LeadMetrics) ObserveImportRows(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.importRowsTotal.WithLabelValues(result).Add(float64(n))
}
