// Package metrics holds the Prometheus collectors of the CMS backend.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fmasite"

var (
	Registry = prometheus.NewRegistry()

	EditorCommands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "editor_commands_total",
		Help:      "Editing commands received over websocket sessions",
	}, []string{"command", "result"})

	Uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_uploads_total",
		Help:      "Image uploads by outcome",
	}, []string{"result"})

	Autosaves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "autosaves_total",
		Help:      "Content flushes of editing sessions by outcome",
	}, []string{"result"})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "editor_sessions",
		Help:      "Open websocket editing sessions",
	})

	bootTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "boot_time",
		Help:      "Server startup time",
	})
)

func init() {
	bootTime.Set(float64(time.Now().UnixMilli()))
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		EditorCommands,
		Uploads,
		Autosaves,
		ActiveSessions,
		bootTime,
	)
}

// Result labels an outcome for the counters above.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
