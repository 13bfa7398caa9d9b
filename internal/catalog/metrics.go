package catalog

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Loads          *prometheus.CounterVec
	ReviewsAdded   prometheus.Counter
	ReviewFailures *prometheus.CounterVec
	Items          prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer, kind string) *Metrics {
	constLabels := prometheus.Labels{"kind": kind}

	m := &Metrics{
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "catalog_loads_total",
			Help:        "Catalog loads by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		ReviewsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "catalog_reviews_added_total",
			Help:        "Reviews accepted and persisted",
			ConstLabels: constLabels,
		}),
		ReviewFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "catalog_review_failures_total",
			Help:        "Rejected review submissions by reason",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		Items: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "catalog_items",
			Help:        "Items held after the last successful load",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(m.Loads, m.ReviewsAdded, m.ReviewFailures, m.Items)
	return m
}

func (m *Metrics) load(result string, items int) {
	if m == nil {
		return
	}
	m.Loads.WithLabelValues(result).Inc()
	if result == "ok" {
		m.Items.Set(float64(items))
	}
}

func (m *Metrics) reviewAdded() {
	if m == nil {
		return
	}
	m.ReviewsAdded.Inc()
}

func (m *Metrics) reviewFailed(reason string) {
	if m == nil {
		return
	}
	m.ReviewFailures.WithLabelValues(reason).Inc()
}
