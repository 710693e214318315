package handler

import (
	"bike-data-pipeline/internal/model"
	"bike-data-pipeline/internal/pipeline"
	"bike-data-pipeline/internal/store"
	"bike-data-pipeline/pkg/utils"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const routePrefix = "/api/v1/pipelines/"

// running maps job IDs to the cancel funcs of their in-flight runs.
// Entries are removed when the run returns, so a missing entry means the
// job is not executing in this process.
var running sync.Map

// jobIDFromPath pulls the job ID out of an /api/v1/pipelines/{id}{suffix}
// path. The suffix is empty for routes addressing the job itself.
func jobIDFromPath(path, suffix string) (string, bool) {
	if !strings.HasPrefix(path, routePrefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	jobID := path[len(routePrefix) : len(path)-len(suffix)]
	if jobID == "" || strings.Contains(jobID, "/") {
		return "", false
	}
	return jobID, true
}

// startRun launches a pipeline run in the background and tracks its cancel
// func so CancelPipeline can stop it.
func startRun(jobID string, job model.CleaningJobSpec, retry bool) {
	ctx, cancel := context.WithCancel(context.Background())
	running.Store(jobID, cancel)

	go func() {
		defer cancel()
		defer running.Delete(jobID)

		// Run persists its own status transitions and errors.
		if retry {
			if err := pipeline.RetryJob(ctx, jobID, job); err == nil {
				fmt.Printf("✅ Retry succeeded for job %s\n", jobID)
			}
			return
		}
		_ = pipeline.Run(ctx, jobID, job)
	}()
}

// CreatePipeline creates a new trip cleaning job
// @Summary Create a new cleaning pipeline
// @Description Create and start a new trip cleaning job with the provided configuration
// @Tags pipelines
// @Accept json
// @Produce json
// @Param pipeline body model.CleaningJobSpec true "Cleaning job configuration"
// @Success 200 {object} map[string]interface{} "Pipeline created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /pipelines [post]
func CreatePipeline(w http.ResponseWriter, r *http.Request) {
	var job model.CleaningJobSpec
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	// 1. Validate payload
	if job.Source.URL == "" {
		http.Error(w, "A source URL or file path is required", http.StatusBadRequest)
		return
	}

	// 2. Generate job ID
	jobID := uuid.New().String()

	// 3. Save job to DB
	if err := store.SaveJob(jobID, job); err != nil {
		http.Error(w, "Failed to save job", http.StatusInternalServerError)
		return
	}

	// 4. Start pipeline asynchronously
	startRun(jobID, job, false)

	// 5. Return response
	resp := map[string]interface{}{
		"message":   "Pipeline created successfully!",
		"jobID":     jobID,
		"status":    "pending",
		"createdAt": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListPipelines retrieves all cleaning jobs
// @Summary List all pipelines
// @Description Get a list of all cleaning jobs with their current status
// @Tags pipelines
// @Accept json
// @Produce json
// @Success 200 {array} map[string]interface{} "List of pipelines"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /pipelines [get]
func ListPipelines(w http.ResponseWriter, r *http.Request) {
	jobs, err := store.ListJobs()
	if err != nil {
		http.Error(w, "Failed to fetch pipelines", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// GetPipeline retrieves a specific cleaning job
// @Summary Get pipeline
// @Description Retrieve details of a specific cleaning job
// @Tags pipelines
// @Accept json
// @Produce json
// @Param id path string true "Pipeline ID"
// @Success 200 {object} map[string]interface{} "Pipeline details"
// @Failure 400 {object} map[string]interface{} "Invalid pipeline ID"
// @Failure 404 {object} map[string]interface{} "Pipeline not found"
// @Router /pipelines/{id} [get]
func GetPipeline(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r.URL.Path, "")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	job, err := store.GetJob(jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// GetPipelineErrors retrieves errors for a cleaning job
// @Summary Get pipeline errors
// @Description Retrieve all errors that occurred during pipeline execution
// @Tags pipelines
// @Accept json
// @Produce json
// @Param id path string true "Pipeline ID"
// @Success 200 {object} map[string]interface{} "Pipeline errors"
// @Failure 400 {object} map[string]interface{} "Invalid pipeline ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /pipelines/{id}/errors [get]
func GetPipelineErrors(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r.URL.Path, "/errors")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	errors, err := store.GetJobErrors(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id": jobID,
		"errors": errors,
		"count":  len(errors),
	})
}

// GET /api/v1/pipelines/{id}/progress
func GetPipelineProgress(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r.URL.Path, "/progress")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	progress, err := store.GetStageProgress(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve progress", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id":   jobID,
		"progress": progress,
		"count":    len(progress),
	})
}

// GET /api/v1/pipelines/{id}/logs
func GetPipelineLogs(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r.URL.Path, "/logs")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	// Get limit from query parameter
	limit := 100 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	logs, err := store.GetPipelineLogs(jobID, limit)
	if err != nil {
		http.Error(w, "Failed to retrieve logs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id": jobID,
		"logs":   logs,
		"count":  len(logs),
		"limit":  limit,
	})
}

// GET /api/v1/pipelines/{id}/summary
func GetPipelineSummary(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r.URL.Path, "/summary")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	summary, err := store.GetSummary(jobID)
	if err != nil {
		http.Error(w, "Summary not available for this job", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id":  jobID,
		"summary": summary,
	})
}

// GetPipelineReport retrieves the data quality report for a cleaning job
// @Summary Get quality report
// @Description Retrieve the pre-cleaning data quality report for a specific job
// @Tags pipelines
// @Accept json
// @Produce json
// @Param id path string true "Pipeline ID"
// @Success 200 {object} map[string]interface{} "Quality report"
// @Failure 400 {object} map[string]interface{} "Invalid pipeline ID"
// @Failure 404 {object} map[string]interface{} "Report not found"
// @Router /pipelines/{id}/report [get]
func GetPipelineReport(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r.URL.Path, "/report")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	report, err := store.GetQualityReport(jobID)
	if err != nil {
		http.Error(w, "Report not available for this job", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id": jobID,
		"report": report,
	})
}

// RetryPipeline retries a failed or completed cleaning job
// @Summary Retry pipeline
// @Description Retry a cleaning job with the same configuration
// @Tags pipelines
// @Accept json
// @Produce json
// @Param id path string true "Pipeline ID"
// @Success 200 {object} map[string]interface{} "Retry initiated"
// @Failure 400 {object} map[string]interface{} "Invalid pipeline ID"
// @Failure 404 {object} map[string]interface{} "Pipeline not found"
// @Failure 409 {object} map[string]interface{} "Pipeline is already running"
// @Router /pipelines/{id}/retry [post]
func RetryPipeline(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r.URL.Path, "/retry")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	// Get the stored job specification
	jobData, err := store.GetJob(jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	spec, ok := jobData["spec"].(model.CleaningJobSpec)
	if !ok {
		http.Error(w, "Invalid job specification", http.StatusInternalServerError)
		return
	}

	if _, active := running.Load(jobID); active {
		http.Error(w, "Job is already running", http.StatusConflict)
		return
	}

	startRun(jobID, spec, true)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Retry initiated",
		"job_id":  jobID,
		"status":  "retrying",
	})
}

// CancelPipeline cancels a running cleaning job
// @Summary Cancel pipeline
// @Description Cancel a running cleaning job
// @Tags pipelines
// @Accept json
// @Produce json
// @Param id path string true "Pipeline ID"
// @Success 200 {object} map[string]interface{} "Pipeline cancelled"
// @Failure 400 {object} map[string]interface{} "Invalid pipeline ID or status"
// @Failure 404 {object} map[string]interface{} "Pipeline not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /pipelines/{id}/cancel [patch]
func CancelPipeline(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r.URL.Path, "/cancel")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	// Check if job exists
	job, err := store.GetJob(jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	// Check if job is in a cancellable state
	status, ok := job["status"].(string)
	if !ok {
		http.Error(w, "Invalid job status", http.StatusInternalServerError)
		return
	}

	if status == "completed" || status == "failed" || status == "cancelled" {
		http.Error(w, fmt.Sprintf("Job is already %s and cannot be cancelled", status), http.StatusBadRequest)
		return
	}

	// Stop the in-flight run if this process owns it. The run's own
	// shutdown path records the cancelled status; the direct update below
	// covers jobs left behind by a previous process.
	if value, loaded := running.Load(jobID); loaded {
		value.(context.CancelFunc)()
	}

	if err := store.UpdateJobStatus(jobID, "cancelled"); err != nil {
		http.Error(w, "Failed to cancel job", http.StatusInternalServerError)
		return
	}

	store.SavePipelineLog(jobID, "pipeline", "info", "Pipeline cancelled by user", map[string]interface{}{
		"cancelled_at":    time.Now(),
		"previous_status": status,
	})

	response := map[string]interface{}{
		"message": "Pipeline cancelled successfully",
		"job_id":  jobID,
		"status":  "cancelled",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// outputFiles resolves download URLs for produced files; DownloadFile
// serves from the same outputs tree.
var outputFiles = utils.NewOutputManager("outputs")

// attachDownloadURLs adds the download endpoint to each produced file row.
func attachDownloadURLs(files ...map[string]interface{}) {
	for _, file := range files {
		jobID, _ := file["job_id"].(string)
		name, _ := file["file_name"].(string)
		file["download_url"] = outputFiles.GetDownloadURL(jobID, name)
	}
}

// GET /api/v1/pipelines/{id}/files
func GetJobFiles(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r.URL.Path, "/files")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	files, err := store.GetOutputFiles(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve files", http.StatusInternalServerError)
		return
	}
	attachDownloadURLs(files...)

	response := map[string]interface{}{
		"job_id": jobID,
		"files":  files,
		"count":  len(files),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// DownloadFile serves a file for download
// @Summary Download file
// @Description Download a specific output file from a cleaning job
// @Tags files
// @Accept json
// @Produce application/octet-stream
// @Param jobID path string true "Job ID"
// @Param filename path string true "File name"
// @Success 200 {file} file "File download"
// @Failure 400 {object} map[string]interface{} "Invalid URL format"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /download/{jobID}/{filename} [get]
func DownloadFile(w http.ResponseWriter, r *http.Request) {
	// URL format: /api/v1/download/jobID/filename
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) < 5 {
		http.Error(w, fmt.Sprintf("Invalid URL format. Expected 5 parts, got %d: %v", len(pathParts), pathParts), http.StatusBadRequest)
		return
	}
	jobID := pathParts[3]
	fileName := pathParts[4]

	if strings.Contains(jobID, "..") || strings.Contains(fileName, "..") {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	filePath := fmt.Sprintf("outputs/%s/%s", jobID, fileName)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	w.Header().Set("Content-Type", "application/octet-stream")

	http.ServeFile(w, r, filePath)
}

// GetFileInfo retrieves information about a specific file
// @Summary Get file information
// @Description Get information about a specific file by ID or all files for a job ID
// @Tags files
// @Accept json
// @Produce json
// @Param id path string true "File ID (numeric) or Job ID (UUID)"
// @Success 200 {object} map[string]interface{} "File information"
// @Failure 400 {object} map[string]interface{} "Invalid file ID"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /files/{id} [get]
func GetFileInfo(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) < 4 {
		http.Error(w, "Invalid URL format", http.StatusBadRequest)
		return
	}

	fileIDStr := pathParts[3]

	// Numeric IDs address a single file row
	if fileID, err := strconv.Atoi(fileIDStr); err == nil {
		fileInfo, err := store.GetOutputFileByID(fileID)
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		attachDownloadURLs(fileInfo)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(fileInfo)
		return
	}

	// Anything else is treated as a job ID listing all of its files
	jobID := fileIDStr
	files, err := store.GetOutputFiles(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve files", http.StatusInternalServerError)
		return
	}
	attachDownloadURLs(files...)

	response := map[string]interface{}{
		"job_id": jobID,
		"files":  files,
		"count":  len(files),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// DeletePipeline deletes a cleaning job and its artifacts
// @Summary Delete pipeline
// @Description Delete a cleaning job and all its associated files and data
// @Tags pipelines
// @Accept json
// @Produce json
// @Param id path string true "Pipeline ID"
// @Success 200 {object} map[string]interface{} "Pipeline deleted"
// @Failure 400 {object} map[string]interface{} "Invalid pipeline ID"
// @Failure 404 {object} map[string]interface{} "Pipeline not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /pipelines/{id} [delete]
func DeletePipeline(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(r.URL.Path, "")
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	// Check if job exists
	if _, err := store.GetJob(jobID); err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	// Stop an in-flight run before removing its artifacts
	if value, loaded := running.Load(jobID); loaded {
		value.(context.CancelFunc)()
	}

	// Get all files for this job
	files, err := store.GetOutputFiles(jobID)
	if err != nil {
		store.SavePipelineLog(jobID, "pipeline", "warning", "Failed to get files for deletion", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Delete physical files
	for _, file := range files {
		if filePath, ok := file["file_path"].(string); ok {
			if err := os.Remove(filePath); err != nil {
				store.SavePipelineLog(jobID, "pipeline", "warning", "Failed to delete file", map[string]interface{}{
					"file_path": filePath,
					"error":     err.Error(),
				})
			}
		}
	}

	// Delete job directory if it exists
	jobDir := fmt.Sprintf("outputs/%s", jobID)
	if err := os.RemoveAll(jobDir); err != nil {
		store.SavePipelineLog(jobID, "pipeline", "warning", "Failed to delete job directory", map[string]interface{}{
			"directory": jobDir,
			"error":     err.Error(),
		})
	}

	// Delete job and its dependent rows from the database
	if err := store.DeleteJob(jobID); err != nil {
		http.Error(w, "Failed to delete job from database", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"message":       "Pipeline and all artifacts deleted successfully",
		"job_id":        jobID,
		"files_deleted": len(files),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
