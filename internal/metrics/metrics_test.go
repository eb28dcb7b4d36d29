package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.FileParsed(false)
	m.FileParsed(false)
	m.FileParsed(true)
	m.PackageExtracted("dicomdir")
	m.CacheResult(true)
	m.CacheResult(false)
	m.CacheResult(false)
	m.ObserveExtraction(20 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesParsedTotal.WithLabelValues("stream")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesParsedTotal.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PackagesExtractedTotal.WithLabelValues("dicomdir")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PackagesExtractedTotal.WithLabelValues("files")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("miss")))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.FileParsed(true)
		m.PackageExtracted("files")
		m.CacheResult(true)
		m.ObserveExtraction(time.Second)
	})
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.PackageExtracted("files")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `dicometa_packages_extracted_total{source="files"} 1`)
}
