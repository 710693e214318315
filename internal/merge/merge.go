package merge

import (
	"bike-data-pipeline/internal/geocode"
	"bike-data-pipeline/internal/model"
	"bike-data-pipeline/pkg/utils"
	"fmt"
)

// coordinateColumns are appended to the merged file, in this order.
var coordinateColumns = []string{"departure_lat", "departure_lon", "return_lat", "return_lon"}

// Result reports what the merge did.
type Result struct {
	Records          int `json:"records"`
	MissingDeparture int `json:"missing_departure"`
	MissingReturn    int `json:"missing_return"`
}

// Coordinates left-joins the geocode cache onto a cleaned trip file,
// appending latitude and longitude for both trip ends. Station ids the
// cache does not know produce empty cells, never errors, and the row is
// kept. The write is atomic.
func Coordinates(inputPath string, cache map[string]geocode.Coordinates, outPath string, cols model.ColumnMapping) (Result, error) {
	header, rows, err := utils.ReadCSVFile(inputPath)
	if err != nil {
		return Result{}, err
	}

	departureIdx, returnIdx := -1, -1
	for i, h := range header {
		switch h {
		case cols.DepartureStationID:
			departureIdx = i
		case cols.ReturnStationID:
			returnIdx = i
		}
	}
	if departureIdx == -1 || returnIdx == -1 {
		return Result{}, fmt.Errorf("station id columns not found in %s", inputPath)
	}

	outHeader := append(append([]string{}, header...), coordinateColumns...)
	result := Result{Records: len(rows)}

	outRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		lat1, lon1, ok := coordinateCells(cache, cellAt(row, departureIdx))
		if !ok {
			result.MissingDeparture++
		}
		lat2, lon2, ok := coordinateCells(cache, cellAt(row, returnIdx))
		if !ok {
			result.MissingReturn++
		}

		merged := make([]string, len(header), len(outHeader))
		copy(merged, row)
		outRows = append(outRows, append(merged, lat1, lon1, lat2, lon2))
	}

	if err := utils.WriteCSVFile(outPath, outHeader, outRows); err != nil {
		return Result{}, fmt.Errorf("failed to write merged trips: %w", err)
	}
	fmt.Printf("✅ Coordinates merged into %s: %d rows, %d unmatched departures, %d unmatched returns\n",
		outPath, result.Records, result.MissingDeparture, result.MissingReturn)
	return result, nil
}

// coordinateCells renders a station's coordinates as CSV cells, empty
// when the cache has no entry.
func coordinateCells(cache map[string]geocode.Coordinates, id string) (string, string, bool) {
	coords, ok := cache[id]
	if !ok {
		return "", "", false
	}
	return utils.FormatFloat(coords.Lat), utils.FormatFloat(coords.Lon), true
}

// cellAt is a bounds-safe row accessor.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
