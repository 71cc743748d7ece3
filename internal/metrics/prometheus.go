package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the resolution service

var (
	// Resolution metrics
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_resolutions_total",
			Help: "Total number of team name resolutions by method",
		},
		[]string{"method", "source"},
	)

	ResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ncaam_resolution_duration_seconds",
			Help:    "Duration of team name resolutions in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"method"},
	)

	AliasesRegistered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_aliases_registered_total",
			Help: "Total number of alias registrations",
		},
		[]string{"source", "status"},
	)

	// Ratings feed metrics
	FeedCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_feed_calls_total",
			Help: "Total number of Barttorvik feed calls",
		},
		[]string{"endpoint", "status"},
	)

	FeedCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ncaam_feed_call_duration_seconds",
			Help:    "Duration of feed calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ncaam_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ncaam_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ncaam_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ncaam_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ncaam_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"type"},
	)

	TeamsRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_teams_registered_total",
			Help: "Total number of canonical teams in database",
		},
	)

	RatedTeams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_rated_teams_total",
			Help: "Number of teams with at least one rating snapshot",
		},
	)

	UnresolvedInputs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_unresolved_inputs_total",
			Help: "Distinct provider inputs that have never resolved",
		},
	)

	// Readiness gate metrics
	GateChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_gate_checks_total",
			Help: "Total number of readiness gate checks by verdict",
		},
		[]string{"verdict"},
	)

	GateMatchRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_gate_match_rate_percent",
			Help: "Rated slot percentage from the most recent gate check",
		},
	)

	GateBlockers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_gate_blockers",
			Help: "Blocking slots from the most recent gate check",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync operation",
		},
	)
)

// RecordResolution records a resolution attempt and its winning method
func RecordResolution(method, source string, duration float64) {
	ResolutionsTotal.WithLabelValues(method, source).Inc()
	ResolutionDuration.WithLabelValues(method).Observe(duration)
}

// RecordAliasRegistration records an alias upsert outcome
func RecordAliasRegistration(source, status string) {
	AliasesRegistered.WithLabelValues(source, status).Inc()
}

// RecordFeedCall records a ratings feed call metric
func RecordFeedCall(endpoint, status string, duration float64) {
	FeedCallsTotal.WithLabelValues(endpoint, status).Inc()
	FeedCallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordSync records a sync operation
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordGateCheck records a readiness gate check result
func RecordGateCheck(passed bool, matchRate float64, blockers int) {
	verdict := "failed"
	if passed {
		verdict = "passed"
	}
	GateChecksTotal.WithLabelValues(verdict).Inc()
	GateMatchRate.Set(matchRate)
	GateBlockers.Set(float64(blockers))
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// UpdateRegistryStats updates canonical registry statistics
func UpdateRegistryStats(teams, rated, unresolved int64) {
	TeamsRegistered.Set(float64(teams))
	RatedTeams.Set(float64(rated))
	UnresolvedInputs.Set(float64(unresolved))
}
