package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrUnknownStation is returned when a station id is not in the catalog.
	ErrUnknownStation = errors.New("unknown station")
	// ErrInvalidStation is returned for catalog entries with missing ids,
	// duplicate ids or names, or coordinates out of range.
	ErrInvalidStation = errors.New("invalid station")
)

// Catalog indexes the configured stations by id.
type Catalog struct {
	byID  map[string]Station
	order []string
}

// NewCatalog validates stations and indexes them. Ids and names must be
// unique since capacity rows join on the name.
func NewCatalog(stations []Station) (Catalog, error) {
	c := Catalog{byID: make(map[string]Station, len(stations)), order: make([]string, 0, len(stations))}
	names := make(map[string]string, len(stations))
	for _, s := range stations {
		if s.ID == "" {
			return Catalog{}, fmt.Errorf("%w: empty id (name %q)", ErrInvalidStation, s.Name)
		}
		if _, dup := c.byID[s.ID]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate id %q", ErrInvalidStation, s.ID)
		}
		if other, dup := names[s.Name]; dup && s.Name != "" {
			return Catalog{}, fmt.Errorf("%w: name %q used by %q and %q", ErrInvalidStation, s.Name, other, s.ID)
		}
		if !validCoord(s.Latitude, 90) || !validCoord(s.Longitude, 180) {
			return Catalog{}, fmt.Errorf("%w: %q coordinates out of range", ErrInvalidStation, s.ID)
		}
		c.byID[s.ID] = s
		c.order = append(c.order, s.ID)
		names[s.Name] = s.ID
	}
	return c, nil
}

func validCoord(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}

// Get returns the station with the given id.
func (c Catalog) Get(id string) (Station, error) {
	s, ok := c.byID[id]
	if !ok {
		return Station{}, fmt.Errorf("%w: %q", ErrUnknownStation, id)
	}
	return s, nil
}

// Stations returns the catalog in configuration order.
func (c Catalog) Stations() []Station {
	out := make([]Station, len(c.order))
	for i, id := range c.order {
		out[i] = c.byID[id]
	}
	return out
}

// IDs returns the station ids sorted lexicographically.
func (c Catalog) IDs() []string {
	ids := append([]string(nil), c.order...)
	sort.Strings(ids)
	return ids
}

// Len returns the number of stations.
func (c Catalog) Len() int { return len(c.order) }

// Complete turns a reading into a station state, filling the identity from
// the catalog. A supplied name or location wins over the catalog's; an id
// missing from the catalog is an error only when the reading carries no
// location of its own. Latitude and longitude must be given together.
func (c Catalog) Complete(r StationReading) (StationState, error) {
	s := r.StationState
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return s, fmt.Errorf("%w: %q needs both latitude and longitude", ErrInvalidStation, s.ID)
	}
	if r.Located() {
		s.Latitude, s.Longitude = *r.Latitude, *r.Longitude
	}
	known, ok := c.byID[s.ID]
	if !ok {
		if !r.Located() {
			return s, fmt.Errorf("%w: %q", ErrUnknownStation, s.ID)
		}
		return s, nil
	}
	if s.Name == "" {
		s.Name = known.Name
	}
	if !r.Located() {
		s.Latitude, s.Longitude = known.Latitude, known.Longitude
	}
	return s, nil
}
