package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	FollowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "follows_total",
		Help: "Total successful follow operations",
	})

	LikesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "likes_total",
		Help: "Total successful like operations",
	})

	CommentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comments_total",
		Help: "Total comments successfully posted",
	})

	SagaFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "relationship_saga_failures_total",
		Help: "Follow/unfollow operations that left the two user documents inconsistent",
	})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(FollowsTotal)
	prometheus.MustRegister(LikesTotal)
	prometheus.MustRegister(CommentsTotal)
	prometheus.MustRegister(SagaFailures)
}

// Middleware records request timing and status per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
