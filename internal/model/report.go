package model

// StageReport records the effect of one cleaning stage
type StageReport struct {
	Stage   string `json:"stage"`
	In      int    `json:"records_in"`
	Removed int    `json:"records_removed"`
	Out     int    `json:"records_out"`
}

// Stats holds descriptive statistics for one numeric column. Count is the
// number of non-missing values; with Count zero the other fields are zero.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summary describes the cleaned trip set
type Summary struct {
	InitialRecords    int           `json:"initial_records"`
	FinalRecords      int           `json:"final_records"`
	Duration          Stats         `json:"duration_sec"`  // recorded duration, as supplied by the source
	Distance          Stats         `json:"distance_m"`
	DepartureStations int           `json:"departure_stations"`
	ReturnStations    int           `json:"return_stations"`
	Stages            []StageReport `json:"stages,omitempty"`
}

// StationCount pairs a station with its trip count
type StationCount struct {
	Station string `json:"station"`
	Count   int    `json:"count"`
}

// QualityReport counts data problems in the raw, uncleaned trip log
type QualityReport struct {
	TotalRecords          int            `json:"total_records"`
	MissingValues         map[string]int `json:"missing_values"` // keyed by source column name
	DuplicateRecords      int            `json:"duplicate_records"`
	NegativeDurations     int            `json:"negative_durations"`
	ReturnBeforeDeparture int            `json:"return_before_departure"`
	VeryShortTrips        int            `json:"very_short_trips"` // recorded duration under 10 s
	VeryLongTrips         int            `json:"very_long_trips"`  // recorded duration over 24 h
	ZeroDistanceTrips     int            `json:"zero_distance_trips"`
	SameStationFar        int            `json:"same_station_far"` // same station but >100 m covered
	DurationMismatches    int            `json:"duration_mismatches"`
	SpeedOutliers         int            `json:"speed_outliers"`
	SlowTrips             int            `json:"slow_trips"`
	DepartureStations     int            `json:"departure_stations"`
	ReturnStations        int            `json:"return_stations"`
	TopDepartureStations  []StationCount `json:"top_departure_stations"`
	TopReturnStations     []StationCount `json:"top_return_stations"`
}
