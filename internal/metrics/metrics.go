package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ossgate"

// Collector exports credential, signing and upload metrics. A nil *Collector
// is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	issueDuration *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	urlsSigned    *prometheus.CounterVec
	uploads       *prometheus.CounterVec
	uploadBytes   *prometheus.CounterVec
	uploadLatency *prometheus.HistogramVec
}

// New registers all metrics on a private registry.
func New() (*Collector, error) {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		issueDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "credential_issue_duration_seconds",
			Help:      "Latency of role-assumption calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_cache_lookups_total",
			Help:      "Credential cache lookups by result.",
		}, []string{"result"}),
		urlsSigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "urls_signed_total",
			Help:      "Signed URL requests by outcome.",
		}, []string{"outcome"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Relayed uploads by category and outcome.",
		}, []string{"category", "outcome"}),
		uploadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes written to the bucket by the upload relay.",
		}, []string{"category"}),
		uploadLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Latency of relayed object writes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"category"}),
	}

	toRegister := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.issueDuration,
		c.cacheLookups,
		c.urlsSigned,
		c.uploads,
		c.uploadBytes,
		c.uploadLatency,
	}
	for _, collector := range toRegister {
		if err := c.registry.Register(collector); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return c, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) CredentialIssued(duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.issueDuration.WithLabelValues(outcome(err)).Observe(duration.Seconds())
}

func (c *Collector) CredentialCacheLookup(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

func (c *Collector) URLSigned(err error) {
	if c == nil {
		return
	}
	c.urlsSigned.WithLabelValues(outcome(err)).Inc()
}

func (c *Collector) ObjectUploaded(category string, sizeBytes int64, duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.uploads.WithLabelValues(category, outcome(err)).Inc()
	c.uploadLatency.WithLabelValues(category).Observe(duration.Seconds())
	if err == nil {
		c.uploadBytes.WithLabelValues(category).Add(float64(sizeBytes))
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
