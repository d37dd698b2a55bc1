package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconciler_fetch_attempts_total",
		Help: "HTTP fetch attempts, including retries.",
	})
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciler_fetch_retries_total",
		Help: "Fetch retries by failure reason.",
	}, []string{"reason"})
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconciler_fetch_cache_hits_total",
		Help: "Responses served from the persistent response cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconciler_fetch_cache_misses_total",
		Help: "Response cache misses.",
	})
	mementoHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconciler_fetch_memento_hits_total",
		Help: "Responses synthesized from historical-archive mementos.",
	})
	repairsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconciler_fetch_response_repairs_total",
		Help: "Responses rebuilt with a corrected Content-Length header.",
	})
)
