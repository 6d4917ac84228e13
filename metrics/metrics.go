// Copyright (C) 2024-2026, CasperLabs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics exposes the Prometheus collectors the finalizer loop
// updates as it drives the detector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FinalityMetrics groups the counters and gauges the finalizer loop
// reports against a single registry.
type FinalityMetrics struct {
	BlocksProcessed   prometheus.Counter
	Finalizations     prometheus.Counter
	Rebuilds          prometheus.Counter
	LastCommitteeWeight prometheus.Gauge
}

// NewFinalityMetrics constructs and registers the finality collectors
// against reg. Namespace/subsystem follow Prometheus's own convention
// (e.g. "highway_finality_blocks_processed_total").
func NewFinalityMetrics(reg prometheus.Registerer) (*FinalityMetrics, error) {
	m := &FinalityMetrics{
		BlocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "highway",
			Subsystem: "finality",
			Name:      "blocks_processed_total",
			Help:      "Total number of blocks passed to the finality detector.",
		}),
		Finalizations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "highway",
			Subsystem: "finality",
			Name:      "finalizations_total",
			Help:      "Total number of blocks declared finalized.",
		}),
		Rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "highway",
			Subsystem: "finality",
			Name:      "rebuilds_total",
			Help:      "Total number of times the voting matrix was rebuilt on a new LFB.",
		}),
		LastCommitteeWeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "highway",
			Subsystem: "finality",
			Name:      "last_committee_weight",
			Help:      "Total weight of the most recently finalized committee.",
		}),
	}

	for _, c := range []prometheus.Collector{m.BlocksProcessed, m.Finalizations, m.Rebuilds, m.LastCommitteeWeight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
