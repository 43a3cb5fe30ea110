package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the entity read path.
type Metrics struct {
	Searches        prometheus.Counter
	StatsCacheHits  prometheus.Counter
	StatsCacheMiss  prometheus.Counter
	EntityNotFounds prometheus.Counter
}

// New creates and registers all entity metrics.
func New() *Metrics {
	return &Metrics{
		Searches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sanctionwatch_entity_searches_total",
			Help: "Total number of entity search requests served",
		}),
		StatsCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sanctionwatch_stats_cache_hits_total",
			Help: "Admin stats reads served from cache",
		}),
		StatsCacheMiss: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sanctionwatch_stats_cache_misses_total",
			Help: "Admin stats reads that fell through to the store",
		}),
		EntityNotFounds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sanctionwatch_entity_not_found_total",
			Help: "Entity detail lookups for unknown ids",
		}),
	}
}
