package scraper

import "github.com/prometheus/client_golang/prometheus"

var (
	fetchCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forum",
			Subsystem: "scraper",
			Name:      "fetches_total",
			Help:      "Remote fetches by result",
		},
		[]string{"result"},
	)
	fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "forum",
		Subsystem: "scraper",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of remote fetches",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
	})
	cacheCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forum",
			Subsystem: "scraper",
			Name:      "details_cache_total",
			Help:      "Page details cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(fetchCounter, fetchDuration, cacheCounter)
}
