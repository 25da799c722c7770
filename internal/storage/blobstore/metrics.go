package blobstore

import "github.com/prometheus/client_golang/prometheus"

const metricNamePrefix = "blob_store_"

type storeMetrics struct {
	opsTotal *prometheus.CounterVec
}

// WithPromRegistry registers operation counters with the given registry.
func WithPromRegistry(registry prometheus.Registerer) S3StoreOptionFunc {
	return func(s *S3Store) {
		s.metrics = newStoreMetrics(registry)
	}
}

func newStoreMetrics(registry prometheus.Registerer) *storeMetrics {
	m := &storeMetrics{
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricNamePrefix + "ops_total",
				Help: "Total number of blob store operations",
			},
			[]string{"operation", "result"},
		),
	}
	registry.MustRegister(m.opsTotal)
	return m
}

func (m *storeMetrics) observe(operation string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.opsTotal.WithLabelValues(operation, result).Inc()
}
