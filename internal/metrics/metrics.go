package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ToolExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxctl_tool_executions_total",
			Help: "Total number of tool executions",
		},
		[]string{"tool", "site", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "voxctl_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	ConnectedAgents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "voxctl_connected_agents",
			Help: "Number of agents connected to the live channel",
		},
	)

	CommandsQueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voxctl_commands_queued_total",
			Help: "Total number of commands added to the relay queue",
		},
	)
)

// Status returns the label value for a success flag.
func Status(success bool) string {
	if success {
		return "ok"
	}
	return "error"
}
