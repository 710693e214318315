package pipeline

import (
	"bike-data-pipeline/internal/model"
	"bike-data-pipeline/pkg/utils"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// columnIndex resolves the configured column names to header positions.
// The station name columns are optional and carry -1 when absent.
type columnIndex struct {
	departure            int
	ret                  int
	departureStationID   int
	departureStationName int
	returnStationID      int
	returnStationName    int
	distance             int
	duration             int
}

// LoadTrips reads the raw trip log into memory. The source may be a local
// file path or an http(s) URL. Only source-level failures error out:
// unparseable cells become null markers on the record, and structurally
// broken rows are skipped with a count.
func LoadTrips(ctx context.Context, source model.Source) ([]model.TripRecord, []string, error) {
	fmt.Printf("➡️ Loading trips from: %s\n", source.URL)

	var reader io.Reader
	if strings.HasPrefix(source.URL, "http") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to GET CSV: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, nil, fmt.Errorf("failed to GET CSV: unexpected status %s", resp.Status)
		}
		reader = resp.Body
	} else {
		file, err := os.Open(source.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		reader = file
	}

	csvReader := csv.NewReader(reader)
	csvReader.LazyQuotes = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i, h := range header {
		// Clean header names: trim whitespace and remove stray quotes
		clean := strings.TrimSpace(h)
		clean = strings.ReplaceAll(clean, `"`, "")
		header[i] = clean
	}

	idx, err := resolveColumns(header, source.ColumnsOrDefault())
	if err != nil {
		return nil, nil, err
	}

	var records []model.TripRecord
	skipped := 0
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil && !errors.Is(err, csv.ErrFieldCount) {
			skipped++
			continue
		}
		records = append(records, newTripRecord(row, idx))
		if len(records)%50000 == 0 {
			fmt.Printf("📄 CSV: Loaded %d rows from %s\n", len(records), source.URL)
		}
	}

	if skipped > 0 {
		fmt.Printf("📄 CSV load done: %d rows read, %d broken rows skipped (%s)\n", len(records), skipped, source.URL)
	} else {
		fmt.Printf("📄 CSV load done: %d rows read from %s\n", len(records), source.URL)
	}
	return records, header, nil
}

// resolveColumns maps configured column names to header positions. All
// columns except the station names are required.
func resolveColumns(header []string, cols model.ColumnMapping) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		positions[h] = i
	}

	required := func(name string) (int, error) {
		i, ok := positions[name]
		if !ok {
			return 0, fmt.Errorf("required column %q not found in header", name)
		}
		return i, nil
	}
	optional := func(name string) int {
		if i, ok := positions[name]; ok {
			return i
		}
		return -1
	}

	var idx columnIndex
	var err error
	if idx.departure, err = required(cols.Departure); err != nil {
		return columnIndex{}, err
	}
	if idx.ret, err = required(cols.Return); err != nil {
		return columnIndex{}, err
	}
	if idx.departureStationID, err = required(cols.DepartureStationID); err != nil {
		return columnIndex{}, err
	}
	if idx.returnStationID, err = required(cols.ReturnStationID); err != nil {
		return columnIndex{}, err
	}
	if idx.distance, err = required(cols.DistanceMeters); err != nil {
		return columnIndex{}, err
	}
	if idx.duration, err = required(cols.DurationSec); err != nil {
		return columnIndex{}, err
	}
	idx.departureStationName = optional(cols.DepartureStationName)
	idx.returnStationName = optional(cols.ReturnStationName)
	return idx, nil
}

// newTripRecord materializes one CSV row. Parse failures become null
// markers, never errors.
func newTripRecord(row []string, idx columnIndex) model.TripRecord {
	return model.TripRecord{
		Departure:            utils.ParseTimestamp(cell(row, idx.departure)),
		Return:               utils.ParseTimestamp(cell(row, idx.ret)),
		DepartureStationID:   strings.TrimSpace(cell(row, idx.departureStationID)),
		DepartureStationName: strings.TrimSpace(cell(row, idx.departureStationName)),
		ReturnStationID:      strings.TrimSpace(cell(row, idx.returnStationID)),
		ReturnStationName:    strings.TrimSpace(cell(row, idx.returnStationName)),
		RecordedDurationSec:  utils.ParseNullableFloat(cell(row, idx.duration)),
		DistanceMeters:       utils.ParseNullableFloat(cell(row, idx.distance)),
		Raw:                  row,
	}
}

// cell is a bounds-safe row accessor; short rows read as blanks.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
