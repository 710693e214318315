package pipeline

import (
	"bike-data-pipeline/internal/model"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Thresholds for the data quality report. These only flag suspicious
// records, the cleaning stages decide what is actually removed.
const (
	qualityShortTripSec    = 10
	qualityLongTripSec     = 24 * 60 * 60
	qualitySameStationM    = 100
	qualityMismatchSec     = 1
	qualityMaxSpeedKmh     = 50
	qualitySlowSpeedKmh    = 1
	qualitySlowMinDuration = 5 * 60
	qualityTopStations     = 10
)

// Analyze counts data problems in the raw, uncleaned trip log. It reads
// the recorded duration column, not the derived one, so it works before
// any cleaning stage has run.
func Analyze(records []model.TripRecord, cols model.ColumnMapping) model.QualityReport {
	report := model.QualityReport{
		TotalRecords:  len(records),
		MissingValues: make(map[string]int),
	}

	seen := make(map[string]struct{}, len(records))
	departureStations := make(map[string]struct{})
	returnStations := make(map[string]struct{})
	departureCounts := make(map[string]int)
	returnCounts := make(map[string]int)

	for _, rec := range records {
		if rec.Departure == nil {
			report.MissingValues[cols.Departure]++
		}
		if rec.Return == nil {
			report.MissingValues[cols.Return]++
		}
		if rec.DepartureStationID == "" {
			report.MissingValues[cols.DepartureStationID]++
		}
		if rec.ReturnStationID == "" {
			report.MissingValues[cols.ReturnStationID]++
		}
		if rec.DistanceMeters == nil {
			report.MissingValues[cols.DistanceMeters]++
		}
		if rec.RecordedDurationSec == nil {
			report.MissingValues[cols.DurationSec]++
		}

		key := strings.Join(rec.Raw, "\x1f")
		if _, ok := seen[key]; ok {
			report.DuplicateRecords++
		} else {
			seen[key] = struct{}{}
		}

		if rec.Departure != nil && rec.Return != nil && rec.Return.Before(*rec.Departure) {
			report.ReturnBeforeDeparture++
		}

		if rec.RecordedDurationSec != nil {
			duration := *rec.RecordedDurationSec
			if duration < 0 {
				report.NegativeDurations++
			}
			if duration >= 0 && duration < qualityShortTripSec {
				report.VeryShortTrips++
			}
			if duration > qualityLongTripSec {
				report.VeryLongTrips++
			}
			if rec.Departure != nil && rec.Return != nil {
				elapsed := rec.Return.Sub(*rec.Departure).Seconds()
				if math.Abs(elapsed-duration) > qualityMismatchSec {
					report.DurationMismatches++
				}
			}
			if rec.DistanceMeters != nil && duration > 0 {
				speed := (*rec.DistanceMeters / 1000) / (duration / 3600)
				if speed > qualityMaxSpeedKmh {
					report.SpeedOutliers++
				}
				if speed < qualitySlowSpeedKmh && duration > qualitySlowMinDuration {
					report.SlowTrips++
				}
			}
		}

		if rec.DistanceMeters != nil {
			if *rec.DistanceMeters == 0 {
				report.ZeroDistanceTrips++
			}
			if rec.SameStation() && *rec.DistanceMeters > qualitySameStationM {
				report.SameStationFar++
			}
		}

		if rec.DepartureStationID != "" {
			departureStations[rec.DepartureStationID] = struct{}{}
			departureCounts[stationLabel(rec.DepartureStationName, rec.DepartureStationID)]++
		}
		if rec.ReturnStationID != "" {
			returnStations[rec.ReturnStationID] = struct{}{}
			returnCounts[stationLabel(rec.ReturnStationName, rec.ReturnStationID)]++
		}
	}

	report.DepartureStations = len(departureStations)
	report.ReturnStations = len(returnStations)
	report.TopDepartureStations = topStations(departureCounts, qualityTopStations)
	report.TopReturnStations = topStations(returnCounts, qualityTopStations)
	return report
}

// stationLabel prefers the human-readable name when the source carries
// one.
func stationLabel(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

// topStations returns the n busiest stations, ties broken by label.
func topStations(counts map[string]int, n int) []model.StationCount {
	ranked := make([]model.StationCount, 0, len(counts))
	for station, count := range counts {
		ranked = append(ranked, model.StationCount{Station: station, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Station < ranked[j].Station
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// PrintQualityReport writes the quality report to the console.
func PrintQualityReport(r model.QualityReport) {
	fmt.Printf("🔍 Quality report over %d records:\n", r.TotalRecords)
	if len(r.MissingValues) > 0 {
		columns := make([]string, 0, len(r.MissingValues))
		for column := range r.MissingValues {
			columns = append(columns, column)
		}
		sort.Strings(columns)
		for _, column := range columns {
			fmt.Printf("🔍   missing %-24s %d\n", column+":", r.MissingValues[column])
		}
	}
	fmt.Printf("🔍   duplicates: %d, negative durations: %d, return before departure: %d\n",
		r.DuplicateRecords, r.NegativeDurations, r.ReturnBeforeDeparture)
	fmt.Printf("🔍   very short: %d, very long: %d, zero distance: %d, same station >%dm: %d\n",
		r.VeryShortTrips, r.VeryLongTrips, r.ZeroDistanceTrips, qualitySameStationM, r.SameStationFar)
	fmt.Printf("🔍   duration mismatches: %d, speed outliers: %d, slow trips: %d\n",
		r.DurationMismatches, r.SpeedOutliers, r.SlowTrips)
	fmt.Printf("🔍   stations: %d departure, %d return\n", r.DepartureStations, r.ReturnStations)
	for _, sc := range r.TopDepartureStations {
		fmt.Printf("🔍   top departure: %-32s %d\n", sc.Station, sc.Count)
	}
}
