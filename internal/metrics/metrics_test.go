package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ossgate/internal/metrics"
)

func TestCollector_RecordsEvents(t *testing.T) {
	c, err := metrics.New()
	require.NoError(t, err)

	c.CredentialCacheLookup(true)
	c.CredentialCacheLookup(false)
	c.CredentialCacheLookup(false)
	c.CredentialIssued(120*time.Millisecond, nil)
	c.URLSigned(errors.New("boom"))
	c.ObjectUploaded("avatar", 1024, 10*time.Millisecond, nil)
	c.ObjectUploaded("avatar", 2048, 10*time.Millisecond, errors.New("denied"))

	count, err := testutil.GatherAndCount(c.Registry(),
		"ossgate_credential_cache_lookups_total",
		"ossgate_urls_signed_total",
		"ossgate_uploads_total",
		"ossgate_uploaded_bytes_total",
	)
	require.NoError(t, err)
	// hit+miss lookups, one signing outcome, two upload outcomes, one byte series
	assert.Equal(t, 6, count)
}

func TestCollector_Handler(t *testing.T) {
	c, err := metrics.New()
	require.NoError(t, err)
	c.ObjectUploaded("property_image", 4096, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ossgate_uploaded_bytes_total{category="property_image"} 4096`)
}

func TestCollector_NilIsSafe(t *testing.T) {
	var c *metrics.Collector

	assert.NotPanics(t, func() {
		c.CredentialIssued(time.Second, nil)
		c.CredentialCacheLookup(true)
		c.URLSigned(nil)
		c.ObjectUploaded("avatar", 1, time.Second, nil)
	})
	assert.Nil(t, c.Registry())
}
