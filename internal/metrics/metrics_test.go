package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fileconv/internal/core"
)

var _ core.RunObserver = (*Metrics)(nil)

func TestObserveRun(t *testing.T) {
	m := New()

	m.ObserveRun(core.FormatCSV, core.OutcomeOK, 20*time.Millisecond)
	m.ObserveRun(core.FormatCSV, core.OutcomeOK, 30*time.Millisecond)
	m.ObserveRun(core.FormatXLSX, core.OutcomeError, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("csv", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("xlsx", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.runDuration), "only successful runs are timed")
}

func TestGaugesAndCounters(t *testing.T) {
	m := New()

	m.SetStoredFiles(7)
	m.ObserveUpload(2, 1024)
	m.RateLimited("upload")

	assert.Equal(t, 7.0, testutil.ToFloat64(m.storedFiles))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.uploadedFiles))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.uploadedBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited.WithLabelValues("upload")))
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/files/{fileID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/files/{fileID}", "404")))
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.SetStoredFiles(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), "fileconv_stored_files 3"))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
