package pipeline

import (
	"bike-data-pipeline/internal/model"
	"fmt"
)

// validateSpec rejects step combinations that cannot run. Partition and
// merge both read the exported file, and merge joins against the geocode
// cache. Record-level problems are never validated here; the cleaning
// stages filter those.
func validateSpec(job model.CleaningJobSpec) error {
	if job.Source.URL == "" {
		return fmt.Errorf("job source url is required")
	}
	if job.Partition != nil && job.Export == nil {
		return fmt.Errorf("partitioning requires an export step")
	}
	if job.Merge != nil && job.Export == nil {
		return fmt.Errorf("coordinate merge requires an export step")
	}
	if job.Merge != nil && job.Geocode == nil {
		return fmt.Errorf("coordinate merge requires a geocode step")
	}
	return nil
}
