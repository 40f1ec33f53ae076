// Package metrics collects Prometheus metrics for the API, the TMDB client and background jobs.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by controllers, the scheduler and the HTTP layer
type Recorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordTMDBRequest(endpoint, outcome string, duration time.Duration)
	RecordMutation(action string, applied bool)
	RecordInboxProcessed(created, updated, failed int)
	RecordInboxPurged(count int)
	SetCollectionSize(counts map[string]int)
}

// Collector is the Prometheus implementation of Recorder
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	tmdbRequests   *prometheus.CounterVec
	tmdbDuration   *prometheus.HistogramVec
	mutations      *prometheus.CounterVec
	inboxTitles    *prometheus.CounterVec
	inboxPurged    prometheus.Counter
	collectionSize *prometheus.GaugeVec
}

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zoetrope_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zoetrope_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		tmdbRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zoetrope_tmdb_requests_total",
			Help: "TMDB API round trips by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		tmdbDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zoetrope_tmdb_request_duration_seconds",
			Help:    "TMDB API latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zoetrope_media_mutations_total",
			Help: "Not-interested and watch-later calls, split by whether an item was found",
		}, []string{"action", "applied"}),
		inboxTitles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zoetrope_inbox_titles_total",
			Help: "Titles mined from the inbox by result",
		}, []string{"result"}),
		inboxPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zoetrope_inbox_purged_total",
			Help: "Expired inbox items deleted",
		}),
		collectionSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "zoetrope_media_items",
			Help: "Items in the collection by media type",
		}, []string{"type"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.tmdbRequests,
		c.tmdbDuration,
		c.mutations,
		c.inboxTitles,
		c.inboxPurged,
		c.collectionSize,
	)

	return c
}

// RecordHTTPRequest records a served request
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordTMDBRequest records a TMDB round trip
func (c *Collector) RecordTMDBRequest(endpoint, outcome string, duration time.Duration) {
	c.tmdbRequests.WithLabelValues(endpoint, outcome).Inc()
	c.tmdbDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordMutation records a not-interested or watch-later call
func (c *Collector) RecordMutation(action string, applied bool) {
	c.mutations.WithLabelValues(action, strconv.FormatBool(applied)).Inc()
}

// RecordInboxProcessed records the outcome of mining one inbox item
func (c *Collector) RecordInboxProcessed(created, updated, failed int) {
	c.inboxTitles.WithLabelValues("created").Add(float64(created))
	c.inboxTitles.WithLabelValues("updated").Add(float64(updated))
	c.inboxTitles.WithLabelValues("failed").Add(float64(failed))
}

// RecordInboxPurged records deleted expired inbox items
func (c *Collector) RecordInboxPurged(count int) {
	c.inboxPurged.Add(float64(count))
}

// SetCollectionSize replaces the per-type item gauge
func (c *Collector) SetCollectionSize(counts map[string]int) {
	c.collectionSize.Reset()
	for mediaType, n := range counts {
		c.collectionSize.WithLabelValues(mediaType).Set(float64(n))
	}
}

// Handler returns the Prometheus scrape handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every measurement
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordTMDBRequest(string, string, time.Duration)      {}
func (Nop) RecordMutation(string, bool)                          {}
func (Nop) RecordInboxProcessed(int, int, int)                   {}
func (Nop) RecordInboxPurged(int)                                {}
func (Nop) SetCollectionSize(map[string]int)                     {}
