package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bike-data-pipeline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "pipeline_test.db")))
}

func sampleSpec() model.CleaningJobSpec {
	return model.CleaningJobSpec{
		Source: model.Source{
			URL:     "trips.csv",
			Columns: &model.ColumnMapping{Departure: "start", Return: "end"},
		},
		Rules:      &model.CleaningRules{MinDurationSec: 90, MaxDurationSec: 7200, MaxSpeedKmh: 45},
		Export:     &model.ExportSpec{File: "clean.csv"},
		Analyze:    true,
		Geocode:    &model.GeocodeSpec{CacheFile: "stations.csv", Retry: &model.RetryConfig{MaxAttempts: 5}},
		JobTimeout: "10m",
	}
}

func TestSaveAndGetJob(t *testing.T) {
	setupStore(t)
	spec := sampleSpec()

	require.NoError(t, SaveJob("job-1", spec))

	jobData, err := GetJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobData["id"])
	assert.Equal(t, "pending", jobData["status"])
	assert.Equal(t, spec, jobData["spec"], "spec survives the round trip typed")

	jobs, err := ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0]["id"])
}

func TestGetJobMissing(t *testing.T) {
	setupStore(t)

	_, err := GetJob("no-such-job")
	assert.Error(t, err)
}

func TestUpdateJobStatus(t *testing.T) {
	setupStore(t)
	require.NoError(t, SaveJob("job-1", sampleSpec()))

	require.NoError(t, UpdateJobStatus("job-1", "running"))

	jobData, err := GetJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, "running", jobData["status"])
}

func TestStageProgressUpsert(t *testing.T) {
	setupStore(t)

	start := time.Now().UTC()
	require.NoError(t, SaveStageProgress("job-1", "load", "started", &start, nil, 0, 0, 0))

	progress, err := GetStageProgress("job-1")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, "started", progress[0]["status"])
	assert.NotContains(t, progress[0], "ended_at")

	end := start.Add(time.Second)
	require.NoError(t, SaveStageProgress("job-1", "load", "completed", &start, &end, 100, 5, 95))

	progress, err = GetStageProgress("job-1")
	require.NoError(t, err)
	require.Len(t, progress, 1, "one row per stage, updated in place")
	assert.Equal(t, "completed", progress[0]["status"])
	assert.Equal(t, 100, progress[0]["records_in"])
	assert.Equal(t, 5, progress[0]["records_removed"])
	assert.Equal(t, 95, progress[0]["records_out"])
	assert.Contains(t, progress[0], "ended_at")
}

func TestStageProgressOrderedByStart(t *testing.T) {
	setupStore(t)

	first := time.Now().UTC()
	second := first.Add(2 * time.Second)
	require.NoError(t, SaveStageProgress("job-1", "timestamps", "completed", &second, nil, 0, 0, 0))
	require.NoError(t, SaveStageProgress("job-1", "load", "completed", &first, nil, 0, 0, 0))

	progress, err := GetStageProgress("job-1")
	require.NoError(t, err)
	require.Len(t, progress, 2)
	assert.Equal(t, "load", progress[0]["stage"], "execution order, not insertion order")
	assert.Equal(t, "timestamps", progress[1]["stage"])
}

func TestJobErrors(t *testing.T) {
	setupStore(t)

	require.NoError(t, SaveJobError("job-1", nil), "nil errors are ignored")
	require.NoError(t, SaveJobError("job-1", errors.New("load failed: boom")))

	jobErrors, err := GetJobErrors("job-1")
	require.NoError(t, err)
	require.Len(t, jobErrors, 1)
	assert.Equal(t, "load failed: boom", jobErrors[0]["error_message"])
}

func TestPipelineLogsNewestFirstWithLimit(t *testing.T) {
	setupStore(t)

	for i := 1; i <= 5; i++ {
		require.NoError(t, SavePipelineLog("job-1", "cleaning", "info", "Stage completed",
			map[string]interface{}{"records_out": i}))
	}

	logs, err := GetPipelineLogs("job-1", 3)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	details, ok := logs[0]["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(5), details["records_out"], "most recent entry first")
	assert.Equal(t, "cleaning", logs[0]["stage"])
	assert.Equal(t, "info", logs[0]["level"])
}

func TestSummaryRoundTrip(t *testing.T) {
	setupStore(t)

	summary := model.Summary{
		InitialRecords:    100,
		FinalRecords:      80,
		Duration:          model.Stats{Count: 80, Mean: 450.5, Median: 420, Min: 60, Max: 3000},
		Distance:          model.Stats{Count: 80, Mean: 2100, Median: 1900, Min: 10, Max: 9000},
		DepartureStations: 12,
		ReturnStations:    11,
		Stages: []model.StageReport{
			{Stage: "timestamps", In: 100, Removed: 3, Out: 97},
			{Stage: "duplicates", In: 97, Removed: 17, Out: 80},
		},
	}

	require.NoError(t, SaveSummary("job-1", summary))

	got, err := GetSummary("job-1")
	require.NoError(t, err)
	assert.Equal(t, summary, got)

	// A re-run overwrites rather than duplicating.
	summary.FinalRecords = 81
	require.NoError(t, SaveSummary("job-1", summary))
	got, err = GetSummary("job-1")
	require.NoError(t, err)
	assert.Equal(t, 81, got.FinalRecords)
}

func TestSummaryMissing(t *testing.T) {
	setupStore(t)

	_, err := GetSummary("no-such-job")
	assert.Error(t, err)
}

func TestQualityReportRoundTrip(t *testing.T) {
	setupStore(t)

	report := model.QualityReport{
		TotalRecords:         100,
		MissingValues:        map[string]int{"Departure": 2, "Covered distance (m)": 7},
		DuplicateRecords:     4,
		VeryShortTrips:       9,
		DepartureStations:    12,
		TopDepartureStations: []model.StationCount{{Station: "Kaivopuisto", Count: 31}},
	}

	require.NoError(t, SaveQualityReport("job-1", report))

	got, err := GetQualityReport("job-1")
	require.NoError(t, err)
	assert.Equal(t, report, got)
}

func TestOutputFiles(t *testing.T) {
	setupStore(t)

	require.NoError(t, SaveOutputFile("job-1", "clean_trips.csv", "outputs/job-1/clean_trips.csv", "csv", 2048))
	require.NoError(t, SaveOutputFile("job-1", "stations_geocoded.csv", "outputs/job-1/stations_geocoded.csv", "csv", 512))

	files, err := GetOutputFiles("job-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "clean_trips.csv", files[0]["file_name"])
	assert.Equal(t, int64(2048), files[0]["size_bytes"])

	fileID, ok := files[1]["id"].(int)
	require.True(t, ok)

	file, err := GetOutputFileByID(fileID)
	require.NoError(t, err)
	assert.Equal(t, "stations_geocoded.csv", file["file_name"])
	assert.Equal(t, "job-1", file["job_id"])

	_, err = GetOutputFileByID(99999)
	assert.Error(t, err)
}

func TestDeleteJobRemovesEverything(t *testing.T) {
	setupStore(t)

	require.NoError(t, SaveJob("job-1", sampleSpec()))
	require.NoError(t, SaveJobError("job-1", errors.New("boom")))
	start := time.Now().UTC()
	require.NoError(t, SaveStageProgress("job-1", "load", "completed", &start, &start, 1, 0, 1))
	require.NoError(t, SavePipelineLog("job-1", "load", "info", "Trip log loaded", nil))
	require.NoError(t, SaveSummary("job-1", model.Summary{FinalRecords: 1}))
	require.NoError(t, SaveQualityReport("job-1", model.QualityReport{TotalRecords: 1}))
	require.NoError(t, SaveOutputFile("job-1", "clean_trips.csv", "outputs/job-1/clean_trips.csv", "csv", 10))

	require.NoError(t, DeleteJob("job-1"))

	_, err := GetJob("job-1")
	assert.Error(t, err)

	jobErrors, err := GetJobErrors("job-1")
	require.NoError(t, err)
	assert.Empty(t, jobErrors)

	progress, err := GetStageProgress("job-1")
	require.NoError(t, err)
	assert.Empty(t, progress)

	logs, err := GetPipelineLogs("job-1", 10)
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, err = GetSummary("job-1")
	assert.Error(t, err)

	_, err = GetQualityReport("job-1")
	assert.Error(t, err)

	files, err := GetOutputFiles("job-1")
	require.NoError(t, err)
	assert.Empty(t, files)
}
