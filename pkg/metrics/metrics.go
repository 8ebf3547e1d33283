// Package metrics defines the Prometheus collectors of focusws.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HelloRequests counts requests answered by the catch-all route.
	HelloRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "focusws_hello_requests_total",
		Help: "Total number of requests served by the hello route",
	})

	// Verdicts counts token verification outcomes.
	Verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focusws_realtime_verdicts_total",
		Help: "Token verification outcomes of realtime handshakes",
	}, []string{"verdict"})

	// Rejected counts handshakes refused before the upgrade.
	Rejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focusws_realtime_rejected_total",
		Help: "Realtime handshakes refused before upgrading",
	}, []string{"reason"})

	// ActiveSessions gauges the realtime sessions currently open.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "focusws_realtime_sessions_active",
		Help: "Number of realtime sessions currently open",
	})

	// FramesReceived counts binary frames received from clients.
	FramesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "focusws_frames_received_total",
		Help: "Total number of camera frames received",
	})

	// Batches counts scored frame batches by verdict.
	Batches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focusws_batches_scored_total",
		Help: "Frame batches scored, by focus verdict",
	}, []string{"focused"})
)

// Handler returns the mux served on the metrics address.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
