// Package metrics provides Prometheus metrics for the dev server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "molt",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests served",
	}, []string{"method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "molt",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	storePosts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "molt",
		Subsystem: "store",
		Name:      "posts",
		Help:      "Number of posts in the database",
	})

	storeReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "molt",
		Subsystem: "store",
		Name:      "reloads_total",
		Help:      "Database reloads triggered by external file changes",
	})

	sseClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "molt",
		Subsystem: "sse",
		Name:      "clients",
		Help:      "Connected event stream clients",
	})
)

// ObserveRequest records one served HTTP request.
func ObserveRequest(method string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// SetStorePosts sets the current post count.
func SetStorePosts(count int) {
	storePosts.Set(float64(count))
}

// AddStoreReload counts one external database reload.
func AddStoreReload() {
	storeReloads.Inc()
}

// AddSSEClient increments the connected event stream client count.
func AddSSEClient() {
	sseClients.Inc()
}

// RemoveSSEClient decrements the connected event stream client count.
func RemoveSSEClient() {
	sseClients.Dec()
}

// Handler returns the Prometheus metrics HTTP handler.
// This collects all promauto-registered metrics automatically.
func Handler() http.Handler {
	return promhttp.Handler()
}
