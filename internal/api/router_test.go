package api

import (
	"bike-data-pipeline/internal/store"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves the test into dir and restores the original working
// directory on cleanup (testing.T.Chdir needs go1.24; toolchain is older).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestRegisterRoutesCoversEveryEndpoint(t *testing.T) {
	r := NewRouter()

	want := []string{
		"POST:/api/v1/pipelines",
		"GET:/api/v1/pipelines",
		"GET:/api/v1/pipelines/*/errors",
		"GET:/api/v1/pipelines/*/progress",
		"GET:/api/v1/pipelines/*/logs",
		"GET:/api/v1/pipelines/*/summary",
		"GET:/api/v1/pipelines/*/report",
		"GET:/api/v1/pipelines/*/files",
		"POST:/api/v1/pipelines/*/retry",
		"PATCH:/api/v1/pipelines/*/cancel",
		"GET:/api/v1/download/*/*",
		"GET:/api/v1/files/*",
		"GET:/api/v1/pipelines/*",
		"DELETE:/api/v1/pipelines/*",
	}

	routes := r.Routes()
	assert.Len(t, routes, len(want))
	for _, key := range want {
		assert.Contains(t, routes, key)
	}
}

func TestSpecificRoutesWinOverGeneric(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, store.InitDB("api_test.db"))

	r := NewRouter()

	// /summary reaches the summary handler, not the generic job route.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pipelines/no-such-job/summary", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Summary not available")

	// /errors answers with an empty list even for an unknown job.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pipelines/no-such-job/errors", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// A known path with an unregistered method is a 405, not a 404.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/pipelines", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
