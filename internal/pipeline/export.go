package pipeline

import (
	"bike-data-pipeline/internal/model"
	"bike-data-pipeline/pkg/utils"
	"fmt"
	"strconv"
)

// DerivedDurationColumn is the column the exporter adds to cleaned files.
const DerivedDurationColumn = "derived_duration_seconds"

// WriteTrips writes the cleaned trip set as CSV. Original cells are kept
// verbatim except the two timestamp columns, which are re-serialized in
// the canonical zone-less layout, and the derived duration column, which
// is appended, or overwritten in place when the input already carried
// one, so cleaning a cleaned file reproduces it exactly. The write is
// atomic: a failure leaves no partial file behind.
func WriteTrips(path string, header []string, records []model.TripRecord, cols model.ColumnMapping) error {
	idx, err := resolveColumns(header, cols)
	if err != nil {
		return err
	}

	derivedIdx := -1
	for i, h := range header {
		if h == DerivedDurationColumn {
			derivedIdx = i
			break
		}
	}

	outHeader := make([]string, len(header), len(header)+1)
	copy(outHeader, header)
	if derivedIdx == -1 {
		outHeader = append(outHeader, DerivedDurationColumn)
		derivedIdx = len(outHeader) - 1
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(outHeader))
		copy(row, rec.Raw)
		row[idx.departure] = rec.Departure.Format(utils.TimestampLayout)
		row[idx.ret] = rec.Return.Format(utils.TimestampLayout)
		row[derivedIdx] = strconv.Itoa(rec.DerivedDurationSec)
		rows = append(rows, row)
	}

	if err := utils.WriteCSVFile(path, outHeader, rows); err != nil {
		return fmt.Errorf("failed to write cleaned trips: %w", err)
	}
	return nil
}
