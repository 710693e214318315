package pipeline

import (
	"bike-data-pipeline/internal/model"
	"sort"
	"strings"
	"time"
)

// Stage is one step of the cleaning pipeline. Apply takes the current
// record set and returns the surviving records plus the number removed;
// transform-only stages return zero removals.
type Stage struct {
	Name  string
	Apply func(records []model.TripRecord) ([]model.TripRecord, int)
}

// CleaningStages returns the ordered stage list for the given thresholds.
// The order is a contract: duplicates are compared on original cells
// before durations are derived, distances are repaired before the zero
// filter, and the speed bound only ever sees duration-bounded records.
func CleaningStages(rules model.CleaningRules) []Stage {
	return []Stage{
		{"timestamps", dropInvalidTimestamps},
		{"duplicates", dropDuplicates},
		{"order", dropReturnBeforeDeparture},
		{"derive_duration", deriveDurations},
		{"min_duration", dropShorterThan(rules.MinDurationSec)},
		{"max_duration", dropLongerThan(rules.MaxDurationSec)},
		{"distance_repair", repairMissingDistances},
		{"zero_distance", dropZeroDistance},
		{"speed", dropFasterThan(rules.MaxSpeedKmh)},
		{"duration_guard", dropNonPositiveDurations},
		{"sort", sortByDepartureDesc},
	}
}

// Clean runs every stage in order and reports the effect of each. Stages
// never mutate their input set.
func Clean(records []model.TripRecord, rules model.CleaningRules) ([]model.TripRecord, []model.StageReport) {
	stages := CleaningStages(rules)
	reports := make([]model.StageReport, 0, len(stages))
	for _, stage := range stages {
		in := len(records)
		out, removed := stage.Apply(records)
		records = out
		reports = append(reports, model.StageReport{
			Stage:   stage.Name,
			In:      in,
			Removed: removed,
			Out:     len(out),
		})
	}
	return records, reports
}

// dropInvalidTimestamps removes records whose departure or return value
// did not parse.
func dropInvalidTimestamps(records []model.TripRecord) ([]model.TripRecord, int) {
	kept := make([]model.TripRecord, 0, len(records))
	for _, rec := range records {
		if rec.Departure == nil || rec.Return == nil {
			continue
		}
		kept = append(kept, rec)
	}
	return kept, len(records) - len(kept)
}

// dropDuplicates removes exact duplicates over the original row cells,
// keeping the first occurrence. Derived fields play no part in the
// comparison.
func dropDuplicates(records []model.TripRecord) ([]model.TripRecord, int) {
	seen := make(map[string]struct{}, len(records))
	kept := make([]model.TripRecord, 0, len(records))
	for _, rec := range records {
		key := strings.Join(rec.Raw, "\x1f")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, rec)
	}
	return kept, len(records) - len(kept)
}

// dropReturnBeforeDeparture removes records that end before they start.
// Zero-length trips survive here and fall to the duration filters.
func dropReturnBeforeDeparture(records []model.TripRecord) ([]model.TripRecord, int) {
	kept := make([]model.TripRecord, 0, len(records))
	for _, rec := range records {
		if rec.Return.Before(*rec.Departure) {
			continue
		}
		kept = append(kept, rec)
	}
	return kept, len(records) - len(kept)
}

// deriveDurations sets DerivedDurationSec to the whole seconds between
// departure and return, truncated toward zero. Removes nothing.
func deriveDurations(records []model.TripRecord) ([]model.TripRecord, int) {
	out := make([]model.TripRecord, len(records))
	for i, rec := range records {
		rec.DerivedDurationSec = int(rec.Return.Sub(*rec.Departure) / time.Second)
		out[i] = rec
	}
	return out, 0
}

func dropShorterThan(minSec int) func([]model.TripRecord) ([]model.TripRecord, int) {
	return func(records []model.TripRecord) ([]model.TripRecord, int) {
		kept := make([]model.TripRecord, 0, len(records))
		for _, rec := range records {
			if rec.DerivedDurationSec < minSec {
				continue
			}
			kept = append(kept, rec)
		}
		return kept, len(records) - len(kept)
	}
}

func dropLongerThan(maxSec int) func([]model.TripRecord) ([]model.TripRecord, int) {
	return func(records []model.TripRecord) ([]model.TripRecord, int) {
		kept := make([]model.TripRecord, 0, len(records))
		for _, rec := range records {
			if rec.DerivedDurationSec > maxSec {
				continue
			}
			kept = append(kept, rec)
		}
		return kept, len(records) - len(kept)
	}
}

// repairMissingDistances zeroes the distance of same-station trips that
// lack one, then removes every record whose distance is still missing.
func repairMissingDistances(records []model.TripRecord) ([]model.TripRecord, int) {
	kept := make([]model.TripRecord, 0, len(records))
	for _, rec := range records {
		if rec.DistanceMeters == nil {
			if !rec.SameStation() {
				continue
			}
			zero := 0.0
			rec.DistanceMeters = &zero
		}
		kept = append(kept, rec)
	}
	return kept, len(records) - len(kept)
}

// dropZeroDistance removes records without a positive covered distance:
// the same-station trips the repair stage just zeroed, and negative
// source values that would otherwise slip past the speed bound.
// Distances are guaranteed non-nil here by the stage order.
func dropZeroDistance(records []model.TripRecord) ([]model.TripRecord, int) {
	kept := make([]model.TripRecord, 0, len(records))
	for _, rec := range records {
		if *rec.DistanceMeters <= 0 {
			continue
		}
		kept = append(kept, rec)
	}
	return kept, len(records) - len(kept)
}

// dropFasterThan removes records whose average speed in km/h exceeds the
// cap. The speed value is computed here and discarded, it never lands on
// the record or in the output.
func dropFasterThan(maxKmh float64) func([]model.TripRecord) ([]model.TripRecord, int) {
	return func(records []model.TripRecord) ([]model.TripRecord, int) {
		kept := make([]model.TripRecord, 0, len(records))
		for _, rec := range records {
			speed := (*rec.DistanceMeters / 1000) / (float64(rec.DerivedDurationSec) / 3600)
			if speed > maxKmh {
				continue
			}
			kept = append(kept, rec)
		}
		return kept, len(records) - len(kept)
	}
}

// dropNonPositiveDurations is the final guard against zero or negative
// derived durations reaching the output.
func dropNonPositiveDurations(records []model.TripRecord) ([]model.TripRecord, int) {
	kept := make([]model.TripRecord, 0, len(records))
	for _, rec := range records {
		if rec.DerivedDurationSec <= 0 {
			continue
		}
		kept = append(kept, rec)
	}
	return kept, len(records) - len(kept)
}

// sortByDepartureDesc orders the final set by departure time, newest
// first. The sort is stable: equal timestamps keep their input order.
func sortByDepartureDesc(records []model.TripRecord) ([]model.TripRecord, int) {
	out := make([]model.TripRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Departure.After(*out[j].Departure)
	})
	return out, 0
}
