// Package metrics holds the process-wide Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CapturesTotal counts capture sessions by terminal result:
	// saved | duplicate | failed | discarded.
	CapturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billerpro",
		Name:      "captures_total",
		Help:      "Capture sessions by terminal result.",
	}, []string{"result"})

	// MaskedFieldsTotal counts redactions by category.
	MaskedFieldsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billerpro",
		Name:      "masked_fields_total",
		Help:      "Privacy redactions by category.",
	}, []string{"category"})

	// ExtractionSeconds observes local text acquisition latency by adapter.
	ExtractionSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "billerpro",
		Name:      "extraction_seconds",
		Help:      "Local text acquisition latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"adapter"})

	// MirrorWritesTotal counts mirror writes by result: ok | error.
	MirrorWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billerpro",
		Name:      "mirror_writes_total",
		Help:      "Best-effort remote mirror writes.",
	}, []string{"result"})
)
