package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveBackend("folder-contents", "ok", time.Millisecond)
	m.FolderLoad("ok")
	m.NASRequest("download", 200)
	assert.Nil(t, m.Registry())
}

func TestCountersAndHandler(t *testing.T) {
	m := New()
	m.ObserveBackend("diagnostics", "ok", 5*time.Millisecond)
	m.ObserveBackend("diagnostics", "http_error", 5*time.Millisecond)
	m.FolderLoad("superseded")
	m.NASRequest("folder-contents", 404)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("diagnostics", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.folderLoads.WithLabelValues("superseded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.nasRequests.WithLabelValues("folder-contents", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "nasdash_backend_requests_total")
	assert.Contains(t, string(body), "nasdash_navigator_folder_loads_total")
}
