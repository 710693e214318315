package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"bike-data-pipeline/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// Initialize DB connection
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	// Create tables if not exists
	tables := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			spec TEXT,
			status TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS job_errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			error_message TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS stage_progress (
			job_id TEXT,
			stage TEXT,
			status TEXT,
			started_at DATETIME,
			ended_at DATETIME,
			records_in INTEGER,
			records_removed INTEGER,
			records_out INTEGER,
			PRIMARY KEY (job_id, stage)
		);`,
		`CREATE TABLE IF NOT EXISTS pipeline_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			stage TEXT,
			level TEXT,
			message TEXT,
			details TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS summaries (
			job_id TEXT PRIMARY KEY,
			summary TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS quality_reports (
			job_id TEXT PRIMARY KEY,
			report TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS output_files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			file_name TEXT,
			file_path TEXT,
			file_type TEXT,
			size_bytes INTEGER,
			created_at DATETIME
		);`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return err
		}
	}

	return nil
}

// SaveJob stores a new cleaning job
func SaveJob(jobID string, spec model.CleaningJobSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO jobs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, specJSON, "pending", now, now)
	return err
}

// ListJobs returns all jobs with basic info
func ListJobs() ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return jobs, rows.Err()
}

// GetJob fetches full job spec and status
func GetJob(jobID string) (map[string]interface{}, error) {
	var specJSON string
	var status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT spec, status, created_at, updated_at FROM jobs WHERE id = ?`, jobID).
		Scan(&specJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.CleaningJobSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        jobID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// UpdateJobStatus updates job status
func UpdateJobStatus(jobID string, status string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`, status, now, jobID)
	return err
}

// SaveJobError records an error for a job
func SaveJobError(jobID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO job_errors (job_id, error_message, created_at) VALUES (?, ?, ?)`,
		jobID, err.Error(), now)
	return e
}

// GetJobErrors returns all recorded errors for a job
func GetJobErrors(jobID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT error_message, created_at FROM job_errors WHERE job_id = ? ORDER BY created_at`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errors []map[string]interface{}
	for rows.Next() {
		var message string
		var createdAt time.Time
		if err := rows.Scan(&message, &createdAt); err != nil {
			return nil, err
		}
		errors = append(errors, map[string]interface{}{
			"error_message": message,
			"created_at":    createdAt,
		})
	}
	return errors, rows.Err()
}

// SaveStageProgress upserts the progress row of one pipeline stage, so a
// job keeps exactly one row per stage with its latest status and counts.
func SaveStageProgress(jobID, stage, status string, startedAt, endedAt *time.Time, recordsIn, recordsRemoved, recordsOut int) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO stage_progress
		(job_id, stage, status, started_at, ended_at, records_in, records_removed, records_out)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		jobID, stage, status, startedAt, endedAt, recordsIn, recordsRemoved, recordsOut)
	return err
}

// GetStageProgress returns per-stage progress for a job in execution order
func GetStageProgress(jobID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT stage, status, started_at, ended_at, records_in, records_removed, records_out
		FROM stage_progress WHERE job_id = ? ORDER BY started_at`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var progress []map[string]interface{}
	for rows.Next() {
		var stage, status string
		var startedAt sql.NullTime
		var endedAt sql.NullTime
		var recordsIn, recordsRemoved, recordsOut int
		if err := rows.Scan(&stage, &status, &startedAt, &endedAt, &recordsIn, &recordsRemoved, &recordsOut); err != nil {
			return nil, err
		}
		entry := map[string]interface{}{
			"stage":           stage,
			"status":          status,
			"records_in":      recordsIn,
			"records_removed": recordsRemoved,
			"records_out":     recordsOut,
		}
		if startedAt.Valid {
			entry["started_at"] = startedAt.Time
		}
		if endedAt.Valid {
			entry["ended_at"] = endedAt.Time
		}
		progress = append(progress, entry)
	}
	return progress, rows.Err()
}

// SavePipelineLog persists one structured log entry for a job
func SavePipelineLog(jobID, stage, level, message string, details map[string]interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO pipeline_logs (job_id, stage, level, message, details, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, stage, level, message, detailsJSON, now)
	return err
}

// GetPipelineLogs returns the most recent log entries for a job
func GetPipelineLogs(jobID string, limit int) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT stage, level, message, details, created_at
		FROM pipeline_logs WHERE job_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []map[string]interface{}
	for rows.Next() {
		var stage, level, message, detailsJSON string
		var createdAt time.Time
		if err := rows.Scan(&stage, &level, &message, &detailsJSON, &createdAt); err != nil {
			return nil, err
		}
		var details map[string]interface{}
		if err := json.Unmarshal([]byte(detailsJSON), &details); err != nil {
			details = nil
		}
		logs = append(logs, map[string]interface{}{
			"stage":      stage,
			"level":      level,
			"message":    message,
			"details":    details,
			"created_at": createdAt,
		})
	}
	return logs, rows.Err()
}

// SaveSummary persists the dataset summary of a completed job
func SaveSummary(jobID string, summary model.Summary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT OR REPLACE INTO summaries (job_id, summary, created_at) VALUES (?, ?, ?)`,
		jobID, summaryJSON, now)
	return err
}

// GetSummary fetches the dataset summary of a job
func GetSummary(jobID string) (model.Summary, error) {
	var summaryJSON string
	err := db.QueryRow(`SELECT summary FROM summaries WHERE job_id = ?`, jobID).Scan(&summaryJSON)
	if err != nil {
		return model.Summary{}, err
	}

	var summary model.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return model.Summary{}, err
	}
	return summary, nil
}

// SaveQualityReport persists the pre-clean data quality report of a job
func SaveQualityReport(jobID string, report model.QualityReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT OR REPLACE INTO quality_reports (job_id, report, created_at) VALUES (?, ?, ?)`,
		jobID, reportJSON, now)
	return err
}

// GetQualityReport fetches the data quality report of a job
func GetQualityReport(jobID string) (model.QualityReport, error) {
	var reportJSON string
	err := db.QueryRow(`SELECT report FROM quality_reports WHERE job_id = ?`, jobID).Scan(&reportJSON)
	if err != nil {
		return model.QualityReport{}, err
	}

	var report model.QualityReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return model.QualityReport{}, err
	}
	return report, nil
}

// SaveOutputFile records a produced file for a job
func SaveOutputFile(jobID, fileName, filePath, fileType string, sizeBytes int64) error {
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO output_files (job_id, file_name, file_path, file_type, size_bytes, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, fileName, filePath, fileType, sizeBytes, now)
	return err
}

// GetOutputFiles returns all produced files for a job
func GetOutputFiles(jobID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, file_name, file_path, file_type, size_bytes, created_at
		FROM output_files WHERE job_id = ? ORDER BY created_at, id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []map[string]interface{}
	for rows.Next() {
		var id int
		var fileName, filePath, fileType string
		var sizeBytes int64
		var createdAt time.Time
		if err := rows.Scan(&id, &fileName, &filePath, &fileType, &sizeBytes, &createdAt); err != nil {
			return nil, err
		}
		files = append(files, map[string]interface{}{
			"id":         id,
			"job_id":     jobID,
			"file_name":  fileName,
			"file_path":  filePath,
			"file_type":  fileType,
			"size_bytes": sizeBytes,
			"created_at": createdAt,
		})
	}
	return files, rows.Err()
}

// GetOutputFileByID fetches one produced file by its numeric id
func GetOutputFileByID(fileID int) (map[string]interface{}, error) {
	var jobID, fileName, filePath, fileType string
	var sizeBytes int64
	var createdAt time.Time

	err := db.QueryRow(`SELECT job_id, file_name, file_path, file_type, size_bytes, created_at
		FROM output_files WHERE id = ?`, fileID).
		Scan(&jobID, &fileName, &filePath, &fileType, &sizeBytes, &createdAt)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":         fileID,
		"job_id":     jobID,
		"file_name":  fileName,
		"file_path":  filePath,
		"file_type":  fileType,
		"size_bytes": sizeBytes,
		"created_at": createdAt,
	}, nil
}

// DeleteJob removes a job and everything recorded about it
func DeleteJob(jobID string) error {
	statements := []string{
		`DELETE FROM job_errors WHERE job_id = ?`,
		`DELETE FROM stage_progress WHERE job_id = ?`,
		`DELETE FROM pipeline_logs WHERE job_id = ?`,
		`DELETE FROM summaries WHERE job_id = ?`,
		`DELETE FROM quality_reports WHERE job_id = ?`,
		`DELETE FROM output_files WHERE job_id = ?`,
		`DELETE FROM jobs WHERE id = ?`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt, jobID); err != nil {
			return err
		}
	}
	return nil
}
