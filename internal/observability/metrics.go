package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostsCreated counts created posts by publication status.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_posts_created_total",
		Help: "Total number of posts created, labeled by status",
	}, []string{"status"})

	// LikeToggles counts like toggles by target kind and outcome.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_like_toggles_total",
		Help: "Total number of like toggles by target kind and resulting state",
	}, []string{"target", "state"})

	// SaveToggles counts bookmark toggles by resulting state.
	SaveToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_save_toggles_total",
		Help: "Total number of saved-post toggles by resulting state",
	}, []string{"state"})

	// CommentsCreated counts created comments by thread level.
	CommentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_comments_created_total",
		Help: "Total number of comments created, labeled top-level vs reply",
	}, []string{"level"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordLikeToggle increments the like toggle counter.
func RecordLikeToggle(target string, liked bool) {
	state := "off"
	if liked {
		state = "on"
	}
	LikeToggles.WithLabelValues(target, state).Inc()
}

// RecordSaveToggle increments the save toggle counter.
func RecordSaveToggle(saved bool) {
	state := "off"
	if saved {
		state = "on"
	}
	SaveToggles.WithLabelValues(state).Inc()
}
