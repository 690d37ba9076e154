package featurestore

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests        *prometheus.CounterVec
	readDuration    *prometheus.HistogramVec
	readKeys        *prometheus.CounterVec
	rows            prometheus.Counter
	registryRefresh *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "featurestore",
			Subsystem: "online",
			Name:      "requests_total",
			Help:      "Online feature requests by result.",
		}, []string{"result"}),
		readDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "featurestore",
			Subsystem: "online",
			Name:      "read_duration_seconds",
			Help:      "Online store read latency per table.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"table"}),
		readKeys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "featurestore",
			Subsystem: "online",
			Name:      "read_keys_total",
			Help:      "Unique entity keys read from the online store per table.",
		}, []string{"table"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "featurestore",
			Subsystem: "online",
			Name:      "rows_total",
			Help:      "Entity rows received by online feature requests.",
		}),
		registryRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "featurestore",
			Subsystem: "registry",
			Name:      "refresh_total",
			Help:      "Registry fetches by project and result.",
		}, []string{"project", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.readDuration, m.readKeys, m.rows, m.registryRefresh)
	}
	return m
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
