package pipeline

import (
	"bike-data-pipeline/internal/geocode"
	"bike-data-pipeline/internal/merge"
	"bike-data-pipeline/internal/model"
	"bike-data-pipeline/internal/store"
	"bike-data-pipeline/internal/temporal"
	"bike-data-pipeline/pkg/utils"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// defaultOutputDir holds per-job artifacts when the job spec names no paths.
const defaultOutputDir = "outputs"

// jobPaths resolves where each optional step writes. An empty path means
// the step is disabled for this job.
type jobPaths struct {
	export     string
	cache      string
	partitions string
	merged     string
}

// ------------------- Pipeline Runner -------------------

// Run executes one cleaning job from load to export on a single goroutine,
// strictly in order: load, optional quality report, the cleaning stages,
// summary, export, then the optional geocode, partition and merge steps.
// Records with data problems are filtered, never fatal; only load and
// write failures abort the job.
func Run(ctx context.Context, jobID string, job model.CleaningJobSpec) (err error) {
	start := time.Now()
	fmt.Printf("🚀 Starting pipeline for job: %s\n", jobID)

	store.UpdateJobStatus(jobID, "running")

	// Defer function to persist the final status on error
	defer func() {
		if err == nil {
			return
		}
		status := "failed"
		if errors.Is(err, context.Canceled) {
			status = "cancelled"
		}
		store.UpdateJobStatus(jobID, status)
		store.SaveJobError(jobID, err)
		fmt.Printf("❌ Pipeline %s for job %s: %v\n", status, jobID, err)
	}()

	if err := validateSpec(job); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, utils.ParseDuration(job.JobTimeout))
	defer cancel()

	om := utils.NewOutputManager(defaultOutputDir)
	paths, err := resolvePaths(om, jobID, job)
	if err != nil {
		return fmt.Errorf("resolving output paths: %w", err)
	}

	// --- LOAD ---
	store.UpdateJobStatus(jobID, "loading")
	loadTrack := trackStage(jobID, "load")

	records, header, err := LoadTrips(ctx, job.Source)
	if err != nil {
		loadTrack.fail(err)
		return fmt.Errorf("load failed: %w", err)
	}
	initialCount := len(records)
	loadTrack.complete(initialCount, 0, initialCount)
	store.SavePipelineLog(jobID, "load", "info", "Trip log loaded", map[string]interface{}{
		"source":  job.Source.URL,
		"records": initialCount,
	})

	cols := job.Source.ColumnsOrDefault()

	// --- QUALITY REPORT (before any record is touched) ---
	if job.Analyze {
		store.UpdateJobStatus(jobID, "analyzing")
		report := Analyze(records, cols)
		store.SaveQualityReport(jobID, report)
		PrintQualityReport(report)
	}

	// --- CLEANING STAGES ---
	store.UpdateJobStatus(jobID, "cleaning")
	rules := job.RulesOrDefault()
	stages := CleaningStages(rules)
	stageReports := make([]model.StageReport, 0, len(stages))

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline aborted before stage %s: %w", stage.Name, err)
		}

		track := trackStage(jobID, stage.Name)
		in := len(records)
		out, removed := stage.Apply(records)
		records = out

		report := model.StageReport{Stage: stage.Name, In: in, Removed: removed, Out: len(out)}
		stageReports = append(stageReports, report)
		track.complete(report.In, report.Removed, report.Out)

		fmt.Printf("✅ Stage %s: %d in, %d removed, %d remaining\n", stage.Name, report.In, report.Removed, report.Out)
	}

	// --- SUMMARY ---
	summary := Summarize(records, initialCount)
	summary.Stages = stageReports
	store.SaveSummary(jobID, summary)
	PrintSummary(summary)

	// --- EXPORT ---
	if paths.export != "" {
		store.UpdateJobStatus(jobID, "exporting")
		if err := WriteTrips(paths.export, header, records, cols); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		recordOutputFile(jobID, om, paths.export)
		fmt.Printf("💾 Cleaned trips written to %s (%d records)\n", paths.export, len(records))
	}

	// --- GEOCODE CACHE ---
	if job.Geocode != nil {
		store.UpdateJobStatus(jobID, "geocoding")
		stations := geocode.CollectStations(records)
		geocoder := geocode.FromSpec(*job.Geocode)
		if err := geocoder.BuildCache(ctx, stations, paths.cache); err != nil {
			return fmt.Errorf("geocoding failed: %w", err)
		}
		recordOutputFile(jobID, om, paths.cache)
		store.SavePipelineLog(jobID, "geocode", "info", "Station cache ready", map[string]interface{}{
			"stations": len(stations),
			"cache":    paths.cache,
		})
	}

	// --- TEMPORAL PARTITIONS ---
	if job.Partition != nil {
		store.UpdateJobStatus(jobID, "partitioning")
		counts, err := temporal.Partition(paths.export, paths.partitions, cols.Departure)
		if err != nil {
			return fmt.Errorf("partitioning failed: %w", err)
		}
		for _, name := range temporal.Names() {
			recordOutputFile(jobID, om, filepath.Join(paths.partitions, temporal.FileName(name)))
		}
		store.SavePipelineLog(jobID, "partition", "info", "Temporal partitions written", map[string]interface{}{
			"counts": counts,
		})
	}

	// --- COORDINATE MERGE ---
	if job.Merge != nil {
		store.UpdateJobStatus(jobID, "merging")
		cache, err := geocode.LoadCache(paths.cache)
		if err != nil {
			return fmt.Errorf("merge failed: %w", err)
		}
		result, err := merge.Coordinates(paths.export, cache, paths.merged, cols)
		if err != nil {
			return fmt.Errorf("merge failed: %w", err)
		}
		recordOutputFile(jobID, om, paths.merged)
		store.SavePipelineLog(jobID, "merge", "info", "Coordinates merged", map[string]interface{}{
			"records":           result.Records,
			"missing_departure": result.MissingDeparture,
			"missing_return":    result.MissingReturn,
		})
	}

	fmt.Printf("🏁 Pipeline completed for job %s in %v\n", jobID, time.Since(start))
	store.UpdateJobStatus(jobID, "completed")
	return nil
}

// RetryJob re-runs a job with its stored spec. Cleaning is deterministic,
// so retrying over the same input converges to the same output files.
func RetryJob(ctx context.Context, jobID string, job model.CleaningJobSpec) error {
	store.UpdateJobStatus(jobID, "retrying")
	return Run(ctx, jobID, job)
}

// resolvePaths fills in default artifact locations under outputs/<jobID>
// for any enabled step whose spec leaves the path empty.
func resolvePaths(om *utils.OutputManager, jobID string, job model.CleaningJobSpec) (jobPaths, error) {
	var paths jobPaths
	var err error

	if job.Export != nil {
		paths.export = job.Export.File
		if paths.export == "" {
			if paths.export, err = om.GetOutputFilePath(jobID, "clean_trips.csv"); err != nil {
				return jobPaths{}, err
			}
		}
	}
	if job.Geocode != nil {
		paths.cache = job.Geocode.CacheFile
		if paths.cache == "" {
			if paths.cache, err = om.GetOutputFilePath(jobID, "stations_geocoded.csv"); err != nil {
				return jobPaths{}, err
			}
		}
	}
	if job.Partition != nil {
		paths.partitions = job.Partition.OutputDir
		if paths.partitions == "" {
			jobDir, err := om.CreateJobOutputDir(jobID)
			if err != nil {
				return jobPaths{}, err
			}
			paths.partitions = filepath.Join(jobDir, "partitions")
		}
	}
	if job.Merge != nil {
		paths.merged = job.Merge.File
		if paths.merged == "" {
			if paths.merged, err = om.GetOutputFilePath(jobID, "trips_with_coordinates.csv"); err != nil {
				return jobPaths{}, err
			}
		}
	}
	return paths, nil
}

// recordOutputFile registers a produced artifact with the store, best effort.
func recordOutputFile(jobID string, om *utils.OutputManager, path string) {
	name := filepath.Base(path)
	size, err := om.GetFileSize(path)
	if err != nil {
		size = 0
	}
	store.SaveOutputFile(jobID, name, path, om.GetFileType(name), size)
}
