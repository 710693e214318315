package pipeline

import (
	"bike-data-pipeline/internal/model"
	"fmt"
	"sort"
)

// Summarize computes the descriptive statistics of a cleaned trip set.
// Missing recorded durations and distances are skipped, not zeroed. An
// empty set yields zero-valued stats, never an error.
func Summarize(records []model.TripRecord, initialRecords int) model.Summary {
	durations := make([]float64, 0, len(records))
	distances := make([]float64, 0, len(records))
	departureStations := make(map[string]struct{})
	returnStations := make(map[string]struct{})

	for _, rec := range records {
		if rec.RecordedDurationSec != nil {
			durations = append(durations, *rec.RecordedDurationSec)
		}
		if rec.DistanceMeters != nil {
			distances = append(distances, *rec.DistanceMeters)
		}
		departureStations[rec.DepartureStationID] = struct{}{}
		returnStations[rec.ReturnStationID] = struct{}{}
	}

	return model.Summary{
		InitialRecords:    initialRecords,
		FinalRecords:      len(records),
		Duration:          describe(durations),
		Distance:          describe(distances),
		DepartureStations: len(departureStations),
		ReturnStations:    len(returnStations),
	}
}

// describe computes count, mean, median, min and max over the values.
func describe(values []float64) model.Stats {
	if len(values) == 0 {
		return model.Stats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return model.Stats{
		Count:  len(sorted),
		Mean:   sum / float64(len(sorted)),
		Median: median(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// median expects sorted input; an even count averages the two central
// values.
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// PrintSummary writes the dataset summary to the console.
func PrintSummary(s model.Summary) {
	fmt.Printf("📊 Summary: %d of %d records kept\n", s.FinalRecords, s.InitialRecords)
	fmt.Printf("📊 Duration (sec.): mean=%.2f median=%.2f min=%.2f max=%.2f (n=%d)\n",
		s.Duration.Mean, s.Duration.Median, s.Duration.Min, s.Duration.Max, s.Duration.Count)
	fmt.Printf("📊 Distance (m): mean=%.2f median=%.2f min=%.2f max=%.2f (n=%d)\n",
		s.Distance.Mean, s.Distance.Median, s.Distance.Min, s.Distance.Max, s.Distance.Count)
	fmt.Printf("📊 Stations: %d departure, %d return\n", s.DepartureStations, s.ReturnStations)
}
