package capacity

import (
	"errors"
	"fmt"

	"github.com/kilianp07/evstation/core/model"
)

// ErrInvalidCapacity is returned for capacity rows without a station name,
// with a missing or unknown vehicle type, or with a negative capacity.
var ErrInvalidCapacity = errors.New("invalid capacity row")

// ValidateRows checks capacity rows before they are loaded into a Table.
func ValidateRows(rows []model.CapacityRow) error {
	for i, r := range rows {
		switch {
		case r.StationName == "":
			return fmt.Errorf("%w: capacity[%d]: station_name is required", ErrInvalidCapacity, i)
		case !r.VehicleType.Valid():
			return fmt.Errorf("%w: capacity[%d]: %w", ErrInvalidCapacity, i, model.ErrInvalidVehicleType)
		case r.RatedCapacity < 0:
			return fmt.Errorf("%w: capacity[%d]: rated_capacity must not be negative, got %d", ErrInvalidCapacity, i, r.RatedCapacity)
		}
	}
	return nil
}

type tableKey struct {
	station string
	vehicle model.VehicleType
}

// Table maps (station name, vehicle type) to a rated port capacity. A zero
// Table is valid and knows no capacities.
type Table struct {
	entries map[tableKey]int
}

// NewTable builds a lookup table from capacity rows. Later rows override
// earlier ones for the same station and vehicle type.
func NewTable(rows []model.CapacityRow) Table {
	t := Table{entries: make(map[tableKey]int, len(rows))}
	for _, r := range rows {
		t.entries[tableKey{station: r.StationName, vehicle: r.VehicleType}] = r.RatedCapacity
	}
	return t
}

// Lookup returns the rated capacity and whether it is known.
func (t Table) Lookup(station string, vt model.VehicleType) (int, bool) {
	c, ok := t.entries[tableKey{station: station, vehicle: vt}]
	return c, ok
}

// Len returns the number of known capacities.
func (t Table) Len() int { return len(t.entries) }
