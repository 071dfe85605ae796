package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixture_tracker_cache_hits_total",
		Help: "Cache hits by tier.",
	}, []string{"tier"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixture_tracker_cache_misses_total",
		Help: "Cache misses (including expired entries) by tier.",
	}, []string{"tier"})

	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixture_tracker_api_requests_total",
		Help: "Outbound API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	RateLimitWaits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fixture_tracker_ratelimit_waits_total",
		Help: "Times a caller was delayed by the rate limiter.",
	})

	FixturesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fixture_tracker_fixtures_processed_total",
		Help: "Fixtures assembled and queued for persistence.",
	})

	FixturesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fixture_tracker_fixtures_skipped_total",
		Help: "Fixtures skipped because the stored record was up to date.",
	})

	BatchCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fixture_tracker_batch_commits_total",
		Help: "Batch writes committed to the fixture store.",
	})
)
