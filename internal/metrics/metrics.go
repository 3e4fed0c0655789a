// Package metrics exposes Prometheus instrumentation for the workflow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is a valid no-op
// receiver so instrumentation never becomes a hard dependency.
type Metrics struct {
	WorkflowsStartedTotal   prometheus.Counter
	WorkflowsCompletedTotal prometheus.Counter
	ArticlesGeneratedTotal  prometheus.Counter
	ArticlesFailedTotal     prometheus.Counter
	ExternalRetriesTotal    *prometheus.CounterVec
	EstimatedCostTotal      prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		WorkflowsStartedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentpilot_workflows_started_total",
			Help: "Campaign workflows started",
		}),
		WorkflowsCompletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentpilot_workflows_completed_total",
			Help: "Campaign workflows that reached completed",
		}),
		ArticlesGeneratedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentpilot_articles_generated_total",
			Help: "Articles generated successfully",
		}),
		ArticlesFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentpilot_articles_failed_total",
			Help: "Article generation attempts that failed",
		}),
		ExternalRetriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentpilot_external_retries_total",
			Help: "Retried external calls by step",
		}, []string{"step"}),
		EstimatedCostTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentpilot_estimated_cost_total",
			Help: "Accumulated estimated synthesis cost in USD",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.WorkflowsStartedTotal,
		m.WorkflowsCompletedTotal,
		m.ArticlesGeneratedTotal,
		m.ArticlesFailedTotal,
		m.ExternalRetriesTotal,
		m.EstimatedCostTotal,
	)

	return m
}

// Handler serves the registry for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) WorkflowStarted() {
	if m != nil {
		m.WorkflowsStartedTotal.Inc()
	}
}

func (m *Metrics) WorkflowCompleted() {
	if m != nil {
		m.WorkflowsCompletedTotal.Inc()
	}
}

func (m *Metrics) ArticleGenerated(cost float64) {
	if m != nil {
		m.ArticlesGeneratedTotal.Inc()
		if cost > 0 {
			m.EstimatedCostTotal.Add(cost)
		}
	}
}

func (m *Metrics) ArticleFailed() {
	if m != nil {
		m.ArticlesFailedTotal.Inc()
	}
}

func (m *Metrics) ExternalRetry(step string) {
	if m != nil {
		m.ExternalRetriesTotal.WithLabelValues(step).Inc()
	}
}
