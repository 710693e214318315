package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOutputFilePathCreatesJobDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "outputs")
	om := NewOutputManager(base)

	path, err := om.GetOutputFilePath("job-1", "clean_trips.csv")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "job-1", "clean_trips.csv"), path)

	info, err := os.Stat(filepath.Join(base, "job-1"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGetOutputFilePathStripsPathParts(t *testing.T) {
	om := NewOutputManager(filepath.Join(t.TempDir(), "outputs"))

	path, err := om.GetOutputFilePath("job-1", "../../etc/passwd")

	require.NoError(t, err)
	assert.Equal(t, "passwd", filepath.Base(path))
	assert.Contains(t, path, filepath.Join("outputs", "job-1"))
}

func TestGetDownloadURL(t *testing.T) {
	om := NewOutputManager("outputs")

	assert.Equal(t, "/api/v1/download/job-1/clean_trips.csv", om.GetDownloadURL("job-1", "clean_trips.csv"))
	assert.Equal(t, "/api/v1/download/job-1/clean_night.csv", om.GetDownloadURL("job-1", "partitions/clean_night.csv"))
}

func TestGetFileType(t *testing.T) {
	om := NewOutputManager("outputs")

	tests := []struct {
		fileName string
		want     string
	}{
		{"clean_trips.csv", "csv"},
		{"REPORT.CSV", "csv"},
		{"summary.json", "json"},
		{"notes.txt", "text"},
		{"archive.zip", "unknown"},
		{"no-extension", "unknown"},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, om.GetFileType(tt.fileName), "file %q", tt.fileName)
	}
}

func TestGetFileSize(t *testing.T) {
	om := NewOutputManager("outputs")
	path := filepath.Join(t.TempDir(), "f.csv")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0644))

	size, err := om.GetFileSize(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	_, err = om.GetFileSize(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
