package model

// RetryConfig defines retry behavior for geocode lookups. Zero values
// fall back to three attempts starting at 1s and doubling up to 30s.
type RetryConfig struct {
	MaxAttempts   int     `json:"maxAttempts"`
	InitialDelay  string  `json:"initialDelay"` // e.g., "1s"
	MaxDelay      string  `json:"maxDelay"`     // e.g., "30s"
	BackoffFactor float64 `json:"backoffFactor"`
}

// WithDefaults fills every unset retry knob with its default.
func (r RetryConfig) WithDefaults() RetryConfig {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 3
	}
	if r.InitialDelay == "" {
		r.InitialDelay = "1s"
	}
	if r.MaxDelay == "" {
		r.MaxDelay = "30s"
	}
	if r.BackoffFactor == 0 {
		r.BackoffFactor = 2.0
	}
	return r
}
