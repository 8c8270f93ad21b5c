// Package metrics holds the Prometheus collectors thoughtsd exports.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thoughtsd_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		},
		[]string{"method", "route", "status"},
	)

	LoginThrottled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "thoughtsd_login_throttled_total",
		Help: "Auth requests rejected by the per-IP limiter.",
	})

	LiveSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "thoughtsd_live_subscribers",
		Help: "Open live feed subscriptions.",
	})

	Snapshots = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thoughtsd_live_snapshots_total",
			Help: "Snapshot loads by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(LoginThrottled)
	prometheus.MustRegister(LiveSubscribers)
	prometheus.MustRegister(Snapshots)
}
