package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "household_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "household_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "route"},
	)

	ContextReadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "household_context_read_failures_total",
			Help: "Household context category reads that degraded to empty",
		},
		[]string{"category"},
	)

	AssistantTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "household_assistant_turns_total",
			Help: "Assistant conversation turns by terminal outcome",
		},
		[]string{"outcome"},
	)

	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "household_assistant_tool_calls_total",
			Help: "Tool calls executed for the model",
		},
		[]string{"tool", "result"},
	)

	LLMLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "household_llm_request_duration_seconds",
			Help: "LLM completion latency in seconds",
		},
		[]string{"provider"},
	)

	InsightsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "household_insights_generated_total",
			Help: "Dashboard insights persisted by source",
		},
		[]string{"source"},
	)

	InsightDraftsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "household_insight_drafts_rejected_total",
			Help: "AI insight drafts discarded by schema validation",
		},
	)
)
