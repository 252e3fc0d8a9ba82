package planning

import (
	"fmt"
	"time"

	"github.com/kilianp07/evstation/core/model"
)

// Config controls the periodic capacity planning loop.
type Config struct {
	// HorizonHours is the forecast window of each run.
	HorizonHours int `json:"horizon_hours"`
	// IntervalSeconds between runs. Zero runs once at startup.
	IntervalSeconds int                 `json:"interval_seconds"`
	Workers         int                 `json:"workers"`
	VehicleTypes    []model.VehicleType `json:"vehicle_types"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.HorizonHours == 0 {
		c.HorizonHours = 72
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if len(c.VehicleTypes) == 0 {
		c.VehicleTypes = append([]model.VehicleType(nil), model.VehicleTypes...)
	}
}

// Validate checks the planning settings.
func (c Config) Validate() error {
	if c.HorizonHours <= 0 {
		return fmt.Errorf("planning: horizon_hours must be positive, got %d", c.HorizonHours)
	}
	if c.IntervalSeconds < 0 {
		return fmt.Errorf("planning: interval_seconds must not be negative, got %d", c.IntervalSeconds)
	}
	seen := make(map[model.VehicleType]bool, len(c.VehicleTypes))
	for _, vt := range c.VehicleTypes {
		if !vt.Valid() {
			return fmt.Errorf("planning: %w: %d", model.ErrInvalidVehicleType, vt)
		}
		if seen[vt] {
			return fmt.Errorf("planning: duplicate vehicle type %s", vt)
		}
		seen[vt] = true
	}
	return nil
}

// Interval returns the pause between two runs.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
