package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Metrics holds the storefront collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	requestCounter    *prometheus.CounterVec
	requestLatency    *prometheus.HistogramVec
	favoriteToggles   *prometheus.CounterVec
	favoritesCascaded prometheus.Counter
	danglingRemoved   *prometheus.CounterVec
	recentCache       *prometheus.CounterVec
}

// New registers every collector on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		favoriteToggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "favorite_toggles_total",
				Help:      "Favorite toggles by outcome",
			},
			[]string{"result"},
		),
		favoritesCascaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "favorites_cascade_removed_total",
				Help:      "Favorites removed together with their product",
			},
		),
		danglingRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "favorites_dangling_removed_total",
				Help:      "Favorites pointing at missing products that were cleaned up",
			},
			[]string{"source"},
		),
		recentCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recent_products_cache_total",
				Help:      "Recent products cache lookups by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.requestCounter,
		m.requestLatency,
		m.favoriteToggles,
		m.favoritesCascaded,
		m.danglingRemoved,
		m.recentCache,
	)
	return m
}

// Toggle results
const (
	ToggleAdded    = "added"
	ToggleRemoved  = "removed"
	ToggleConflict = "conflict"
	ToggleError    = "error"
)

func (m *Metrics) ObserveToggle(result string) {
	if m == nil {
		return
	}
	m.favoriteToggles.WithLabelValues(result).Inc()
}

func (m *Metrics) AddCascadeRemoved(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.favoritesCascaded.Add(float64(n))
}

// AddDanglingRemoved counts self-heal removals; source is "read" or "sweep"
func (m *Metrics) AddDanglingRemoved(source string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.danglingRemoved.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) ObserveRecentCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.recentCache.WithLabelValues(result).Inc()
}

// Middleware records request count and latency per matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestCounter.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
