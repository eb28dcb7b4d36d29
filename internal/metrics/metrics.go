package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the extraction counters
type Metrics struct {
	FilesParsedTotal       *prometheus.CounterVec
	PackagesExtractedTotal *prometheus.CounterVec
	CacheRequestsTotal     *prometheus.CounterVec
	ExtractionDuration     prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers the metrics with reg. Tests pass their own registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FilesParsedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dicometa_files_parsed_total",
				Help: "Files parsed, by the path that produced the metadata",
			},
			[]string{"path"},
		),
		PackagesExtractedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dicometa_packages_extracted_total",
				Help: "Packages aggregated, by source",
			},
			[]string{"source"},
		),
		CacheRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dicometa_cache_requests_total",
				Help: "Result cache lookups",
			},
			[]string{"result"},
		),
		ExtractionDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dicometa_extraction_duration_seconds",
				Help:    "Time spent extracting one file or package",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
		),
		gatherer: reg,
	}
}

// FileParsed counts a parsed file; fallback marks buffers without the DICM marker
func (m *Metrics) FileParsed(fallback bool) {
	if m == nil {
		return
	}
	path := "stream"
	if fallback {
		path = "fallback"
	}
	m.FilesParsedTotal.WithLabelValues(path).Inc()
}

func (m *Metrics) PackageExtracted(source string) {
	if m == nil {
		return
	}
	m.PackagesExtractedTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) CacheResult(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveExtraction(d time.Duration) {
	if m == nil {
		return
	}
	m.ExtractionDuration.Observe(d.Seconds())
}

// Handler serves the registry in the text exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
