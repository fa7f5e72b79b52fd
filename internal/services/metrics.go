package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// cacheLookups counts feed cache reads by result (hit, miss, error).
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_lookups_total",
			Help: "Feed cache lookups by result.",
		},
		[]string{"result"},
	)

	// cacheInvalidations counts cache clears by scope (self, all).
	cacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_invalidations_total",
			Help: "Feed cache invalidations by scope.",
		},
		[]string{"scope"},
	)
)

func init() {
	prometheus.MustRegister(cacheLookups, cacheInvalidations)
}
