package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "progression_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"query_type", "backend"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "progression_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type", "backend"},
	)

	WeeklyResetRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_weekly_reset_runs_total",
			Help: "Total number of weekly reset runs by outcome",
		},
		[]string{"status"},
	)

	WeeklyResetDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "progression_weekly_reset_duration_seconds",
			Help:    "Weekly reset run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	WeeklyBadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_weekly_badges_awarded_total",
			Help: "Total number of weekly club rank badges awarded",
		},
		[]string{"rank"},
	)

	WeeklyXPResetUsersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "progression_weekly_xp_reset_users_total",
			Help: "Total number of user records whose weekly XP was reset",
		},
	)

	LevelCalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_level_calculations_total",
			Help: "Total number of level calculations served",
		},
		[]string{"status"},
	)

	ServiceUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "progression_service_uptime_seconds",
			Help: "Time since Progression Service started in seconds",
		},
	)

	ServiceInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "progression_service_info",
			Help: "Progression Service information",
		},
		[]string{"version", "build_time", "storage_driver"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordLevelCalculation(status string) {
	LevelCalculationsTotal.WithLabelValues(status).Inc()
}
