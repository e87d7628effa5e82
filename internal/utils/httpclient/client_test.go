package httpclient

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"OutreachSync/internal/config"
	"OutreachSync/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClientDecompressesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "gzip")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(`{"ok":true}`))
		_ = gz.Close()
	}))
	defer srv.Close()

	before := testutil.ToFloat64(metrics.ExternalRequestsTotal.WithLabelValues("test-gzip", "200"))

	client := NewHTTPClient("test-gzip", &config.ServiceConfig{Timeout: 2}, logrus.New())
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Empty(t, resp.Header.Get("Content-Encoding"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ExternalRequestsTotal.WithLabelValues("test-gzip", "200")))
}

func TestNewHTTPClientTimeout(t *testing.T) {
	client := NewHTTPClient("test-timeout", &config.ServiceConfig{Timeout: 7}, logrus.New())
	assert.Equal(t, 7*time.Second, client.Timeout)

	client = NewHTTPClient("test-timeout", &config.ServiceConfig{}, logrus.New())
	assert.Equal(t, defaultTimeout, client.Timeout)
}

func TestNewHTTPClientCountsTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	before := testutil.ToFloat64(metrics.ExternalRequestsTotal.WithLabelValues("test-down", "error"))
	client := NewHTTPClient("test-down", &config.ServiceConfig{Timeout: 1}, logrus.New())
	_, err := client.Get(url)
	assert.Error(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ExternalRequestsTotal.WithLabelValues("test-down", "error")))
}
