package model

import "time"

// TripRecord is one row of the source trip log. Raw keeps the original CSV
// cells verbatim; the typed fields are parsed views over them. A nil time
// means the source value did not parse; a nil float means the cell was
// blank or non-numeric.
type TripRecord struct {
	Departure            *time.Time `json:"departure"`
	Return               *time.Time `json:"return"`
	DepartureStationID   string     `json:"departure_station_id"`
	DepartureStationName string     `json:"departure_station_name"`
	ReturnStationID      string     `json:"return_station_id"`
	ReturnStationName    string     `json:"return_station_name"`
	RecordedDurationSec  *float64   `json:"recorded_duration_sec"` // as supplied by the source, never filtered on
	DistanceMeters       *float64   `json:"distance_meters"`
	DerivedDurationSec   int        `json:"derived_duration_sec"` // whole seconds, set by the cleaning pipeline
	Raw                  []string   `json:"-"`
}

// SameStation reports whether the trip starts and ends at the same station.
func (t TripRecord) SameStation() bool {
	return t.DepartureStationID == t.ReturnStationID
}
