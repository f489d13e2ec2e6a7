// Package config loads the JSON session configuration: the observation to
// model, the box geometry to carve out of it, and where the session's store
// and solver live. Fields omitted from the file fall back to the package
// defaults, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/heliodata/sunbox/box"
	"github.com/heliodata/sunbox/frame"
)

// SessionConfig represents the root configuration for a modeling session.
// All fields are optional; the Get* methods supply defaults for absent ones.
type SessionConfig struct {
	// Observation params. ObsTime is RFC 3339; the observer fields override
	// the Earth ephemerides and must be set together or not at all.
	ObsTime        *string  `json:"obs_time,omitempty"`
	ObserverLatDeg *float64 `json:"observer_lat_deg,omitempty"`
	ObserverLonDeg *float64 `json:"observer_lon_deg,omitempty"`
	ObserverDistMm *float64 `json:"observer_dist_mm,omitempty"`

	// Box geometry params. The origin is the helioprojective sky position
	// the box is anchored at.
	OriginTxArcsec *float64 `json:"origin_tx_arcsec,omitempty"`
	OriginTyArcsec *float64 `json:"origin_ty_arcsec,omitempty"`
	DimXPix        *int     `json:"dim_x_pix,omitempty"`
	DimYPix        *int     `json:"dim_y_pix,omitempty"`
	DimZPix        *int     `json:"dim_z_pix,omitempty"`
	ResMm          *float64 `json:"res_mm,omitempty"`
	RSunMm         *float64 `json:"rsun_mm,omitempty"`
	PadFrac        *float64 `json:"pad_frac,omitempty"`
	PadFloorArcsec *float64 `json:"pad_floor_arcsec,omitempty"`

	// Service params
	StorePath *string `json:"store_path,omitempty"`
	SolverURL *string `json:"solver_url,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptySessionConfig returns a SessionConfig with all fields set to nil.
// Every Get* method on it returns its default.
func EmptySessionConfig() *SessionConfig {
	return &SessionConfig{}
}

// LoadSessionConfig loads a SessionConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadSessionConfig(path string) (*SessionConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptySessionConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *SessionConfig) Validate() error {
	// Validate ObsTime can be parsed if set
	if c.ObsTime != nil && *c.ObsTime != "" {
		if _, err := time.Parse(time.RFC3339, *c.ObsTime); err != nil {
			return fmt.Errorf("invalid obs_time '%s': %w", *c.ObsTime, err)
		}
	}

	// Observer overrides come as a complete vantage or not at all
	set := 0
	for _, f := range []*float64{c.ObserverLatDeg, c.ObserverLonDeg, c.ObserverDistMm} {
		if f != nil {
			set++
		}
	}
	if set != 0 && set != 3 {
		return fmt.Errorf("observer override needs observer_lat_deg, observer_lon_deg and observer_dist_mm together, got %d of 3", set)
	}
	if c.ObserverDistMm != nil && *c.ObserverDistMm <= 0 {
		return fmt.Errorf("observer_dist_mm must be positive, got %f", *c.ObserverDistMm)
	}

	// Validate box dimensions if set
	for name, d := range map[string]*int{
		"dim_x_pix": c.DimXPix,
		"dim_y_pix": c.DimYPix,
		"dim_z_pix": c.DimZPix,
	} {
		if d != nil && *d < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", name, *d)
		}
	}

	if c.ResMm != nil && *c.ResMm <= 0 {
		return fmt.Errorf("res_mm must be positive, got %f", *c.ResMm)
	}
	if c.RSunMm != nil && *c.RSunMm <= 0 {
		return fmt.Errorf("rsun_mm must be positive, got %f", *c.RSunMm)
	}
	if c.PadFrac != nil && *c.PadFrac < 0 {
		return fmt.Errorf("pad_frac must be non-negative, got %f", *c.PadFrac)
	}
	if c.PadFloorArcsec != nil && *c.PadFloorArcsec < 0 {
		return fmt.Errorf("pad_floor_arcsec must be non-negative, got %f", *c.PadFloorArcsec)
	}

	// Validate SolverURL is absolute if set
	if c.SolverURL != nil && *c.SolverURL != "" {
		u, err := url.Parse(*c.SolverURL)
		if err != nil {
			return fmt.Errorf("invalid solver_url '%s': %w", *c.SolverURL, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("solver_url must be absolute, got '%s'", *c.SolverURL)
		}
	}

	return nil
}

// GetObsTime parses and returns the ObsTime as a time.Time.
func (c *SessionConfig) GetObsTime() time.Time {
	defaultTime := time.Date(2014, 11, 1, 16, 40, 0, 0, time.UTC)
	if c.ObsTime == nil || *c.ObsTime == "" {
		return defaultTime
	}
	t, err := time.Parse(time.RFC3339, *c.ObsTime)
	if err != nil {
		return defaultTime // default on parse error
	}
	return t
}

// Observation assembles the session's observation: the configured observer
// vantage when overridden, otherwise Earth at the observation time.
func (c *SessionConfig) Observation() frame.Observation {
	t := c.GetObsTime()
	if c.ObserverLatDeg != nil && c.ObserverLonDeg != nil && c.ObserverDistMm != nil {
		return frame.Observation{
			Time: t,
			Observer: frame.Observer{
				LatDeg:     *c.ObserverLatDeg,
				LonDeg:     *c.ObserverLonDeg,
				DistanceMm: *c.ObserverDistMm,
			},
		}
	}
	return frame.EarthObservation(t)
}

// Origin assembles the box origin as a sky position of the given observation.
func (c *SessionConfig) Origin(obs frame.Observation) frame.Point {
	return frame.NewHelioprojective(obs, c.GetOriginTxArcsec(), c.GetOriginTyArcsec())
}

// GetOriginTxArcsec returns the origin_tx_arcsec value or the default.
func (c *SessionConfig) GetOriginTxArcsec() float64 {
	if c.OriginTxArcsec == nil {
		return -632 // default
	}
	return *c.OriginTxArcsec
}

// GetOriginTyArcsec returns the origin_ty_arcsec value or the default.
func (c *SessionConfig) GetOriginTyArcsec() float64 {
	if c.OriginTyArcsec == nil {
		return -135 // default
	}
	return *c.OriginTyArcsec
}

// GetDims returns the box pixel dimensions or the default.
func (c *SessionConfig) GetDims() [3]int {
	dims := [3]int{100, 100, 100} // default
	if c.DimXPix != nil {
		dims[0] = *c.DimXPix
	}
	if c.DimYPix != nil {
		dims[1] = *c.DimYPix
	}
	if c.DimZPix != nil {
		dims[2] = *c.DimZPix
	}
	return dims
}

// GetResMm returns the res_mm value or the default.
func (c *SessionConfig) GetResMm() float64 {
	if c.ResMm == nil {
		return 1.4 // default
	}
	return *c.ResMm
}

// GetRSunMm returns the rsun_mm value or the default.
func (c *SessionConfig) GetRSunMm() float64 {
	if c.RSunMm == nil {
		return box.DefaultRSunMm
	}
	return *c.RSunMm
}

// GetPadFrac returns the pad_frac value or the default.
func (c *SessionConfig) GetPadFrac() float64 {
	if c.PadFrac == nil {
		return box.DefaultPadFrac
	}
	return *c.PadFrac
}

// GetPadFloorArcsec returns the pad_floor_arcsec value or the default.
func (c *SessionConfig) GetPadFloorArcsec() float64 {
	if c.PadFloorArcsec == nil {
		return box.DefaultPadFloorArcsec
	}
	return *c.PadFloorArcsec
}

// BoxOptions assembles the box options the non-default geometry fields call
// for.
func (c *SessionConfig) BoxOptions() []box.Option {
	return []box.Option{
		box.WithRSun(c.GetRSunMm()),
		box.WithPadFrac(c.GetPadFrac()),
		box.WithPadFloor(c.GetPadFloorArcsec()),
	}
}

// GetStorePath returns the store_path value or the default.
func (c *SessionConfig) GetStorePath() string {
	if c.StorePath == nil || *c.StorePath == "" {
		return "sunbox.db" // default
	}
	return *c.StorePath
}

// GetSolverURL returns the solver_url value or the default.
func (c *SessionConfig) GetSolverURL() string {
	if c.SolverURL == nil || *c.SolverURL == "" {
		return "http://localhost:8080" // default
	}
	return *c.SolverURL
}
