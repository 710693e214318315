package pipeline

import (
	"bike-data-pipeline/internal/model"
	"bike-data-pipeline/pkg/utils"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTripsCanonicalOutput(t *testing.T) {
	// Source timestamps use the space-separated layout on purpose.
	content := defaultTestHeader + "\n" +
		"2021-06-01 10:00:00,2021-06-01 10:10:00,001,Kaivopuisto,002,Laivasillankatu,2500,595\n"
	path := writeTempCSV(t, content)

	records, header, err := LoadTrips(context.Background(), model.Source{URL: path})
	require.NoError(t, err)
	cleaned, _ := Clean(records, model.CleaningRules{}.WithDefaults())
	require.Len(t, cleaned, 1)

	outPath := filepath.Join(t.TempDir(), "clean.csv")
	require.NoError(t, WriteTrips(outPath, header, cleaned, model.DefaultColumns()))

	outHeader, rows, err := utils.ReadCSVFile(outPath)
	require.NoError(t, err)
	require.Len(t, outHeader, 9)
	assert.Equal(t, DerivedDurationColumn, outHeader[8], "derived column appended after the originals")
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "2021-06-01T10:00:00", row[0], "departure re-serialized in the canonical layout")
	assert.Equal(t, "2021-06-01T10:10:00", row[1])
	assert.Equal(t, "Kaivopuisto", row[3], "other cells kept verbatim")
	assert.Equal(t, "2500", row[6])
	assert.Equal(t, "595", row[7], "recorded duration untouched")
	assert.Equal(t, "600", row[8], "derived duration from the timestamps")
}

func TestWriteTripsIdempotent(t *testing.T) {
	content := defaultTestHeader + "\n" +
		"2021-06-01 12:00:00,2021-06-01 12:05:00,008,Töölö,009,Pasila,1000,300\n" +
		"2021-06-01 10:00:00,2021-06-01 10:10:00,001,Kaivopuisto,002,Laivasillankatu,2500,595\n" +
		"2021-06-01 11:00:00,2021-06-01 11:00:05,003,Esplanadi,004,Kauppatori,50,5\n"
	path := writeTempCSV(t, content)

	firstOut := filepath.Join(t.TempDir(), "first.csv")
	secondOut := filepath.Join(t.TempDir(), "second.csv")

	records, header, err := LoadTrips(context.Background(), model.Source{URL: path})
	require.NoError(t, err)
	cleaned, _ := Clean(records, model.CleaningRules{}.WithDefaults())
	require.NoError(t, WriteTrips(firstOut, header, cleaned, model.DefaultColumns()))

	// Feed the cleaned file back through the pipeline.
	records, header, err = LoadTrips(context.Background(), model.Source{URL: firstOut})
	require.NoError(t, err)
	recleaned, reports := Clean(records, model.CleaningRules{}.WithDefaults())
	require.NoError(t, WriteTrips(secondOut, header, recleaned, model.DefaultColumns()))

	for _, report := range reports {
		assert.Zerof(t, report.Removed, "stage %s removed records from an already clean file", report.Stage)
	}

	first, err := os.ReadFile(firstOut)
	require.NoError(t, err)
	second, err := os.ReadFile(secondOut)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second), "cleaning a cleaned file reproduces it exactly")
}

func TestWriteTripsReplacesExistingDerivedColumn(t *testing.T) {
	header := []string{"Departure", "Return", "Departure station id", "Departure station name",
		"Return station id", "Return station name", "Covered distance (m)", "Duration (sec.)", DerivedDurationColumn}

	departure := ts(t, "2021-06-01T10:00:00")
	ret := ts(t, "2021-06-01T10:10:00")
	rec := model.TripRecord{
		Departure:          departure,
		Return:             ret,
		DerivedDurationSec: 600,
		Raw: []string{"2021-06-01T10:00:00", "2021-06-01T10:10:00", "001", "Kaivopuisto",
			"002", "Laivasillankatu", "2500", "595", "999"},
	}

	outPath := filepath.Join(t.TempDir(), "clean.csv")
	require.NoError(t, WriteTrips(outPath, header, []model.TripRecord{rec}, model.DefaultColumns()))

	outHeader, rows, err := utils.ReadCSVFile(outPath)
	require.NoError(t, err)

	occurrences := 0
	for _, h := range outHeader {
		if h == DerivedDurationColumn {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences, "derived column is replaced, never duplicated")
	require.Len(t, outHeader, 9)
	require.Len(t, rows, 1)
	assert.Equal(t, "600", rows[0][8], "stale derived value overwritten")
}

func TestWriteTripsLeavesNoPartialFile(t *testing.T) {
	tmp := t.TempDir()
	blocked := filepath.Join(tmp, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("not a directory"), 0644))

	outPath := filepath.Join(blocked, "clean.csv")
	header := append([]string{}, defaultColumnsHeader()...)

	err := WriteTrips(outPath, header, nil, model.DefaultColumns())

	require.Error(t, err)
	_, statErr := os.Stat(outPath)
	assert.Error(t, statErr, "failed export must not leave a file behind")
}

// defaultColumnsHeader lists the default column names in file order.
func defaultColumnsHeader() []string {
	cols := model.DefaultColumns()
	return []string{cols.Departure, cols.Return, cols.DepartureStationID, cols.DepartureStationName,
		cols.ReturnStationID, cols.ReturnStationName, cols.DistanceMeters, cols.DurationSec}
}
