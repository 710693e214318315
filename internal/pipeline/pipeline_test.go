package pipeline

import (
	"bike-data-pipeline/internal/model"
	"bike-data-pipeline/internal/store"
	"bike-data-pipeline/pkg/utils"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
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

// setupJobEnv isolates a pipeline run: fresh working directory for the
// outputs tree, fresh database, and a raw trip log on disk.
func setupJobEnv(t *testing.T) {
	t.Helper()
	chdir(t, t.TempDir())
	require.NoError(t, store.InitDB("pipeline_test.db"))

	content := defaultTestHeader + "\n" +
		"2021-06-01T12:00:00,2021-06-01T12:05:00,008,Töölö,009,Pasila,1000,300\n" +
		"2021-06-01T10:00:00,2021-06-01T10:10:00,001,Kaivopuisto,002,Laivasillankatu,2500,595\n" +
		"2021-06-01T11:00:00,2021-06-01T11:00:05,003,Esplanadi,004,Kauppatori,50,5\n"
	require.NoError(t, os.WriteFile("trips.csv", []byte(content), 0644))
}

func TestRunCompletesJob(t *testing.T) {
	setupJobEnv(t)

	job := model.CleaningJobSpec{
		Source:  model.Source{URL: "trips.csv"},
		Export:  &model.ExportSpec{},
		Analyze: true,
	}
	require.NoError(t, store.SaveJob("job-run", job))

	require.NoError(t, Run(context.Background(), "job-run", job))

	jobData, err := store.GetJob("job-run")
	require.NoError(t, err)
	assert.Equal(t, "completed", jobData["status"])

	summary, err := store.GetSummary("job-run")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.InitialRecords)
	assert.Equal(t, 2, summary.FinalRecords)
	assert.Len(t, summary.Stages, 11)

	report, err := store.GetQualityReport("job-run")
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalRecords)
	assert.Equal(t, 1, report.VeryShortTrips)

	progress, err := store.GetStageProgress("job-run")
	require.NoError(t, err)
	assert.Len(t, progress, 12, "load plus the eleven cleaning stages")
	for _, entry := range progress {
		assert.Equal(t, "completed", entry["status"])
	}

	files, err := store.GetOutputFiles("job-run")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "clean_trips.csv", files[0]["file_name"])

	header, rows, err := utils.ReadCSVFile(filepath.Join("outputs", "job-run", "clean_trips.csv"))
	require.NoError(t, err)
	assert.Equal(t, DerivedDurationColumn, header[len(header)-1])
	require.Len(t, rows, 2)
	assert.Equal(t, "2021-06-01T12:00:00", rows[0][0], "newest trip first")
}

func TestRunProducesAllArtifacts(t *testing.T) {
	setupJobEnv(t)

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"lat":"60.17","lon":"24.94"}]`))
	}))
	defer srv.Close()

	job := model.CleaningJobSpec{
		Source: model.Source{URL: "trips.csv"},
		Export: &model.ExportSpec{},
		Geocode: &model.GeocodeSpec{
			Endpoint:       srv.URL,
			RequestsPerSec: 1000,
		},
		Partition:  &model.PartitionSpec{},
		Merge:      &model.MergeSpec{},
		JobTimeout: "1m",
	}
	require.NoError(t, store.SaveJob("job-full", job))

	require.NoError(t, Run(context.Background(), "job-full", job))

	jobData, err := store.GetJob("job-full")
	require.NoError(t, err)
	assert.Equal(t, "completed", jobData["status"])

	jobDir := filepath.Join("outputs", "job-full")

	// Two cleaned trips reference four distinct stations.
	assert.Equal(t, int64(4), hits.Load())
	_, cacheRows, err := utils.ReadCSVFile(filepath.Join(jobDir, "stations_geocoded.csv"))
	require.NoError(t, err)
	require.Len(t, cacheRows, 4)
	assert.Equal(t, "60.17", cacheRows[0][2])

	partitions, err := os.ReadDir(filepath.Join(jobDir, "partitions"))
	require.NoError(t, err)
	assert.Len(t, partitions, 11)

	mergedHeader, mergedRows, err := utils.ReadCSVFile(filepath.Join(jobDir, "trips_with_coordinates.csv"))
	require.NoError(t, err)
	assert.Equal(t, "return_lon", mergedHeader[len(mergedHeader)-1])
	require.Len(t, mergedRows, 2)
	assert.Equal(t, "60.17", mergedRows[0][len(mergedHeader)-4])

	files, err := store.GetOutputFiles("job-full")
	require.NoError(t, err)
	assert.Len(t, files, 14, "export, cache, eleven partitions and the merged file")

	// A retry over the same input converges: the cache short-circuits
	// and the cleaned file comes out byte-identical.
	before, err := os.ReadFile(filepath.Join(jobDir, "clean_trips.csv"))
	require.NoError(t, err)

	require.NoError(t, RetryJob(context.Background(), "job-full", job))

	assert.Equal(t, int64(4), hits.Load(), "existing cache skips every lookup")
	after, err := os.ReadFile(filepath.Join(jobDir, "clean_trips.csv"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	jobData, err = store.GetJob("job-full")
	require.NoError(t, err)
	assert.Equal(t, "completed", jobData["status"])

	files, err = store.GetOutputFiles("job-full")
	require.NoError(t, err)
	assert.Len(t, files, 28, "each run registers its artifacts again")
}

func TestRunPersistsFailure(t *testing.T) {
	setupJobEnv(t)

	job := model.CleaningJobSpec{Source: model.Source{URL: "does-not-exist.csv"}, Export: &model.ExportSpec{}}
	require.NoError(t, store.SaveJob("job-bad", job))

	err := Run(context.Background(), "job-bad", job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load failed")

	jobData, err := store.GetJob("job-bad")
	require.NoError(t, err)
	assert.Equal(t, "failed", jobData["status"])

	jobErrors, err := store.GetJobErrors("job-bad")
	require.NoError(t, err)
	require.Len(t, jobErrors, 1)
	assert.Contains(t, jobErrors[0]["error_message"], "load failed")

	progress, err := store.GetStageProgress("job-bad")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, "failed", progress[0]["status"])
}

func TestRunCancelledBeforeCleaning(t *testing.T) {
	setupJobEnv(t)

	job := model.CleaningJobSpec{Source: model.Source{URL: "trips.csv"}}
	require.NoError(t, store.SaveJob("job-cancel", job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, "job-cancel", job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	jobData, err := store.GetJob("job-cancel")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", jobData["status"], "a cancelled run is not a failed run")
}

func TestRunWithoutExportSkipsFileSteps(t *testing.T) {
	setupJobEnv(t)

	job := model.CleaningJobSpec{Source: model.Source{URL: "trips.csv"}}
	require.NoError(t, store.SaveJob("job-dry", job))

	require.NoError(t, Run(context.Background(), "job-dry", job))

	files, err := store.GetOutputFiles("job-dry")
	require.NoError(t, err)
	assert.Empty(t, files)

	summary, err := store.GetSummary("job-dry")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.FinalRecords, "summary is still computed")

	_, err = os.Stat("outputs")
	assert.Error(t, err, "no outputs tree for a job that writes nothing")
}
