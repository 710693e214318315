package geocode

import (
	"bike-data-pipeline/internal/model"
	"bike-data-pipeline/pkg/utils"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultEndpoint  = "https://nominatim.openstreetmap.org/search"
	defaultRegion    = "Helsinki, Finland"
	defaultUserAgent = "bike-data-pipeline/1.0"
)

// cacheHeader is the column set of the station coordinate cache file.
var cacheHeader = []string{"station_id", "station_name", "lat", "lon"}

// Station is one station to look up, keyed by its source id.
type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Coordinates as resolved by the lookup service.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Config tunes the geocoder. Zero values fall back to the public
// Nominatim endpoint at one request per second with default retries.
type Config struct {
	Endpoint       string
	Region         string
	RequestsPerSec float64
	UserAgent      string
	Retry          model.RetryConfig
}

// Geocoder resolves station names to coordinates through a Nominatim-style
// search endpoint, never faster than the configured rate.
type Geocoder struct {
	endpoint  string
	region    string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	retry     retryPolicy
}

// New builds a Geocoder from a config, filling defaults.
func New(cfg Config) *Geocoder {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 1
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Geocoder{
		endpoint:  cfg.Endpoint,
		region:    cfg.Region,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		retry:     policyFromConfig(cfg.Retry),
	}
}

// FromSpec builds a Geocoder from a job spec section.
func FromSpec(spec model.GeocodeSpec) *Geocoder {
	cfg := Config{
		Endpoint:       spec.Endpoint,
		Region:         spec.Region,
		RequestsPerSec: spec.RequestsPerSec,
	}
	if spec.Retry != nil {
		cfg.Retry = *spec.Retry
	}
	return New(cfg)
}

// CollectStations gathers the unique stations referenced by either end of
// the trips, in first-seen order. The first name seen for an id wins.
func CollectStations(records []model.TripRecord) []Station {
	seen := make(map[string]struct{})
	var stations []Station
	add := func(id, name string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		stations = append(stations, Station{ID: id, Name: name})
	}
	for _, rec := range records {
		add(rec.DepartureStationID, rec.DepartureStationName)
		add(rec.ReturnStationID, rec.ReturnStationName)
	}
	return stations
}

// BuildCache resolves every station and writes the cache CSV. When the
// cache file already exists the lookups are skipped entirely. Stations
// without a name are never queried and keep empty coordinate cells, as
// do stations the service cannot resolve; only a cancelled context
// aborts the batch.
func (g *Geocoder) BuildCache(ctx context.Context, stations []Station, path string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("🌐 Geocode cache already exists, skipping lookups: %s\n", path)
		return nil
	}

	fmt.Printf("🌐 Geocoding %d stations...\n", len(stations))
	resolved := 0
	rows := make([][]string, 0, len(stations))
	for i, station := range stations {
		row := []string{station.ID, station.Name, "", ""}

		// A nameless station would search for the bare region string,
		// which matches the city itself.
		if station.Name == "" {
			rows = append(rows, row)
			continue
		}

		// Each attempt takes a rate limiter slot, retries included
		var coords *Coordinates
		err := withRetry(ctx, g.retry, func() error {
			if err := g.limiter.Wait(ctx); err != nil {
				return err
			}
			var lookupErr error
			coords, lookupErr = g.Lookup(ctx, station.Name)
			return lookupErr
		})
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("geocoding aborted: %w", ctx.Err())
			}
			fmt.Printf("❌ Geocode failed for %q: %v\n", station.Name, err)
		} else if coords != nil {
			row[2] = utils.FormatFloat(coords.Lat)
			row[3] = utils.FormatFloat(coords.Lon)
			resolved++
		}
		rows = append(rows, row)

		if (i+1)%25 == 0 {
			fmt.Printf("🌐 Geocoded %d/%d stations\n", i+1, len(stations))
		}
	}

	if err := utils.WriteCSVFile(path, cacheHeader, rows); err != nil {
		return fmt.Errorf("failed to write geocode cache: %w", err)
	}
	fmt.Printf("✅ Geocode cache written: %s (%d/%d resolved)\n", path, resolved, len(stations))
	return nil
}

// Lookup queries the search endpoint for a single station. A nil result
// with a nil error means the service had no match.
func (g *Geocoder) Lookup(ctx context.Context, name string) (*Coordinates, error) {
	params := url.Values{}
	params.Set("q", name+", "+g.region)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}
	return &Coordinates{Lat: lat, Lon: lon}, nil
}

// LoadCache reads a cache file into an id → coordinates map. Stations
// whose lookup failed have empty cells and are left out: absence means
// unknown, never an error.
func LoadCache(path string) (map[string]Coordinates, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geocode cache: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read cache header: %w", err)
	}

	cache := make(map[string]Coordinates)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cache read error: %w", err)
		}
		if len(row) < 4 {
			continue
		}
		lat, latErr := strconv.ParseFloat(row[2], 64)
		lon, lonErr := strconv.ParseFloat(row[3], 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		cache[row[0]] = Coordinates{Lat: lat, Lon: lon}
	}
	return cache, nil
}
