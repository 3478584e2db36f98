// Package metrics exposes authorization decisions, risk scores and policy
// faults as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/laughtale01/Scratch-sub001/pkg/authz"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

const namespace = "ztctl"

// Collector implements authz.Metrics and policy.Metrics.
type Collector struct {
	decisions       *prometheus.CounterVec
	decisionLatency prometheus.Histogram
	riskScore       prometheus.Histogram
	riskLevels      *prometheus.CounterVec
	policyEvals     *prometheus.CounterVec
	policyFaults    *prometheus.CounterVec
	revocations     prometheus.Counter
	buildInfo       *prometheus.GaugeVec
}

// NewCollector registers the collectors with reg. A nil reg uses the default
// registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collector{
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_decisions_total",
			Help:      "Authorization decisions by status.",
		}, []string{"status"}),
		decisionLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "authz_decision_duration_seconds",
			Help:      "Time spent deciding a single request.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		riskScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      "Distribution of computed risk scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 9),
		}),
		riskLevels: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_assessments_total",
			Help:      "Risk assessments by level.",
		}, []string{"level"}),
		policyEvals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_evaluations_total",
			Help:      "Policies considered during evaluation.",
		}, []string{"policy"}),
		policyFaults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_faults_total",
			Help:      "Policy conditions that failed to evaluate.",
		}, []string{"policy"}),
		revocations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_revoked_total",
			Help:      "Sessions revoked by continuous verification.",
		}),
		buildInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information.",
		}, []string{"version"}),
	}
}

// SetBuildInfo sets build_info{version} to 1.
func (c *Collector) SetBuildInfo(version string) {
	c.buildInfo.WithLabelValues(version).Set(1)
}

// ObserveDecision implements authz.Metrics.
func (c *Collector) ObserveDecision(status authz.Status, d time.Duration) {
	c.decisions.WithLabelValues(string(status)).Inc()
	c.decisionLatency.Observe(d.Seconds())
}

// ObserveRisk implements authz.Metrics.
func (c *Collector) ObserveRisk(score float64, level risk.Level) {
	c.riskScore.Observe(score)
	c.riskLevels.WithLabelValues(level.String()).Inc()
}

// SessionRevoked implements authz.Metrics.
func (c *Collector) SessionRevoked() {
	c.revocations.Inc()
}

// PolicyConsidered implements policy.Metrics.
func (c *Collector) PolicyConsidered(name string) {
	c.policyEvals.WithLabelValues(name).Inc()
}

// PolicyFault implements policy.Metrics.
func (c *Collector) PolicyFault(name string) {
	c.policyFaults.WithLabelValues(name).Inc()
}
