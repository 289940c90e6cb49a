package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_decisions_total",
	Help: "Number of committed moderation decisions, by log action",
}, []string{"action"})

var ReportsUpdated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_reports_updated_total",
	Help: "Number of report rows moved out of review by single or bulk updates",
})

var GateDenials = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_gate_denials_total",
	Help: "Number of calls refused by the permission gate, by required tier",
}, []string{"tier"})

var SnapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "moderation_dashboard_snapshot_seconds",
	Help:    "Time taken to assemble a dashboard snapshot",
	Buckets: prometheus.DefBuckets,
})

var EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_live_events_total",
	Help: "Number of live feed events, by outcome",
}, []string{"outcome"})
