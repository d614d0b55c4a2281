package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trackrate_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	SearchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trackrate_search_cache_hits_total",
			Help: "Searches answered from the local track cache",
		},
	)

	SearchCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trackrate_search_cache_misses_total",
			Help: "Searches that fell through to the catalog API",
		},
	)

	CatalogErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackrate_catalog_errors_total",
			Help: "Catalog API failures by stage",
		},
		[]string{"stage"}, // "search", "breaker_open"
	)

	ReactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackrate_reactions_total",
			Help: "Applied like/dislike transitions",
		},
		[]string{"kind", "op"}, // kind: like|dislike, op: add|remove
	)
)

// Middleware records request latency keyed by the matched route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
