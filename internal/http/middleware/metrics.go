// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for HTTP traffic. Labels stay
// bounded: the route template (not the raw URL) for matched requests, and the
// literal "unmatched" for everything else so 404 scans cannot blow up the
// series count.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const feedSourceKey = "feedSource"

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tracker_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds.",
			// feed requests can sit on an acquisition up to the serving deadline
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_http_response_size_bytes",
			Help:    "Size of HTTP responses in bytes.",
			Buckets: prometheus.ExponentialBuckets(512, 4, 8), // 512B..8MiB
		},
		[]string{"method", "path"},
	)

	// feedServed counts feed responses by where their data came from.
	feedServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_feed_responses_total",
			Help: "Feed responses by route and data source.",
		},
		[]string{"path", "source"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, feedServed)
}

// TagSource records which data source answered a feed request. The access
// log and the feed counter pick it up after the handler returns.
func TagSource(c *gin.Context, source string) {
	c.Set(feedSourceKey, source)
}

// Metrics returns a Gin middleware that instruments requests with Prometheus.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
		if src, ok := c.Get(feedSourceKey); ok {
			feedServed.WithLabelValues(path, asString(src)).Inc()
		}
	}
}
