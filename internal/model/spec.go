package model

// Default cleaning thresholds, applied when the job spec leaves them unset.
const (
	DefaultMinDurationSec = 60
	DefaultMaxDurationSec = 4 * 60 * 60
	DefaultMaxSpeedKmh    = 50.0
)

// ColumnMapping names the source CSV columns the pipeline reads. Unset
// fields fall back to the Helsinki city bike headers.
type ColumnMapping struct {
	Departure            string `json:"departure"`
	Return               string `json:"return"`
	DepartureStationID   string `json:"departureStationId"`
	DepartureStationName string `json:"departureStationName"`
	ReturnStationID      string `json:"returnStationId"`
	ReturnStationName    string `json:"returnStationName"`
	DistanceMeters       string `json:"distanceMeters"`
	DurationSec          string `json:"durationSec"`
}

// DefaultColumns returns the Helsinki city bike dataset headers.
func DefaultColumns() ColumnMapping {
	return ColumnMapping{
		Departure:            "Departure",
		Return:               "Return",
		DepartureStationID:   "Departure station id",
		DepartureStationName: "Departure station name",
		ReturnStationID:      "Return station id",
		ReturnStationName:    "Return station name",
		DistanceMeters:       "Covered distance (m)",
		DurationSec:          "Duration (sec.)",
	}
}

// WithDefaults fills every unset column name from DefaultColumns.
func (c ColumnMapping) WithDefaults() ColumnMapping {
	def := DefaultColumns()
	if c.Departure == "" {
		c.Departure = def.Departure
	}
	if c.Return == "" {
		c.Return = def.Return
	}
	if c.DepartureStationID == "" {
		c.DepartureStationID = def.DepartureStationID
	}
	if c.DepartureStationName == "" {
		c.DepartureStationName = def.DepartureStationName
	}
	if c.ReturnStationID == "" {
		c.ReturnStationID = def.ReturnStationID
	}
	if c.ReturnStationName == "" {
		c.ReturnStationName = def.ReturnStationName
	}
	if c.DistanceMeters == "" {
		c.DistanceMeters = def.DistanceMeters
	}
	if c.DurationSec == "" {
		c.DurationSec = def.DurationSec
	}
	return c
}

// CleaningRules holds the filter thresholds. Zero values fall back to the
// defaults: 60 s minimum, 4 h maximum, 50 km/h speed cap.
type CleaningRules struct {
	MinDurationSec int     `json:"minDurationSec"`
	MaxDurationSec int     `json:"maxDurationSec"`
	MaxSpeedKmh    float64 `json:"maxSpeedKmh"`
}

// WithDefaults fills every unset threshold with its default.
func (r CleaningRules) WithDefaults() CleaningRules {
	if r.MinDurationSec == 0 {
		r.MinDurationSec = DefaultMinDurationSec
	}
	if r.MaxDurationSec == 0 {
		r.MaxDurationSec = DefaultMaxDurationSec
	}
	if r.MaxSpeedKmh == 0 {
		r.MaxSpeedKmh = DefaultMaxSpeedKmh
	}
	return r
}

// Source points at the raw trip log for the pipeline
type Source struct {
	URL     string         `json:"url"`               // local CSV path or http(s) URL
	Columns *ColumnMapping `json:"columns,omitempty"` // per-source column names
}

// ColumnsOrDefault resolves the source's column mapping.
func (s Source) ColumnsOrDefault() ColumnMapping {
	if s.Columns == nil {
		return DefaultColumns()
	}
	return s.Columns.WithDefaults()
}

// ExportSpec names the cleaned CSV destination
type ExportSpec struct {
	File string `json:"file"` // e.g., clean_trips.csv
}

// GeocodeSpec configures the station coordinate cache step
type GeocodeSpec struct {
	CacheFile      string       `json:"cacheFile"`
	Endpoint       string       `json:"endpoint,omitempty"`       // defaults to the public Nominatim search API
	Region         string       `json:"region,omitempty"`         // appended to station names, e.g. "Helsinki, Finland"
	RequestsPerSec float64      `json:"requestsPerSec,omitempty"` // polite default of 1
	Retry          *RetryConfig `json:"retry,omitempty"`
}

// PartitionSpec configures temporal partitioning of the cleaned file
type PartitionSpec struct {
	OutputDir string `json:"outputDir"`
}

// MergeSpec configures the coordinate merge output
type MergeSpec struct {
	File string `json:"file"`
}

// CleaningJobSpec defines the entire pipeline configuration and is the
// struct for POST /api/v1/pipelines
type CleaningJobSpec struct {
	Source     Source         `json:"source"`
	Rules      *CleaningRules `json:"rules,omitempty"`
	Export     *ExportSpec    `json:"export,omitempty"`
	Analyze    bool           `json:"analyze"` // run a data quality report before cleaning
	Geocode    *GeocodeSpec   `json:"geocode,omitempty"`
	Partition  *PartitionSpec `json:"partition,omitempty"`
	Merge      *MergeSpec     `json:"merge,omitempty"`
	JobTimeout string         `json:"jobTimeout"` // e.g., "5m"
}

// RulesOrDefault resolves the job's cleaning thresholds.
func (j CleaningJobSpec) RulesOrDefault() CleaningRules {
	if j.Rules == nil {
		return CleaningRules{}.WithDefaults()
	}
	return j.Rules.WithDefaults()
}
