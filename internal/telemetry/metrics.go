package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	CacheHits             = prometheus.NewCounter(prometheus.CounterOpts{Name: "jobboard_cache_hits_total", Help: "Cache facade hits"})
	CacheMisses           = prometheus.NewCounter(prometheus.CounterOpts{Name: "jobboard_cache_misses_total", Help: "Cache facade misses (incl. degraded reads)"})
	JobsCreated           = prometheus.NewCounter(prometheus.CounterOpts{Name: "jobboard_jobs_created_total", Help: "Jobs created"})
	ApplicationsCreated   = prometheus.NewCounter(prometheus.CounterOpts{Name: "jobboard_applications_created_total", Help: "Applications created"})
	DuplicateApplications = prometheus.NewCounter(prometheus.CounterOpts{Name: "jobboard_duplicate_applications_total", Help: "Apply attempts rejected as duplicates"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			CacheHits,
			CacheMisses,
			JobsCreated,
			ApplicationsCreated,
			DuplicateApplications,
		)
	})
	return promhttp.Handler()
}
