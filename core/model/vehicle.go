package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidVehicleType is returned when a vehicle type string is neither
// "car" nor "scooter".
var ErrInvalidVehicleType = errors.New("invalid vehicle type")

// VehicleType identifies the class of vehicle a charging port serves. The
// zero value is VehicleUnknown, so a missing vehicle_type never decodes to a
// valid type.
type VehicleType int

const (
	VehicleUnknown VehicleType = iota
	VehicleCar
	VehicleScooter
)

// VehicleTypes lists every supported vehicle type in canonical order.
var VehicleTypes = []VehicleType{VehicleCar, VehicleScooter}

// String returns the wire representation of the vehicle type.
func (t VehicleType) String() string {
	switch t {
	case VehicleCar:
		return "car"
	case VehicleScooter:
		return "scooter"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the supported vehicle types.
func (t VehicleType) Valid() bool {
	return t == VehicleCar || t == VehicleScooter
}

// ParseVehicleType converts "car" or "scooter" (case-insensitive) into a VehicleType.
func ParseVehicleType(s string) (VehicleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "car":
		return VehicleCar, nil
	case "scooter":
		return VehicleScooter, nil
	default:
		return VehicleUnknown, fmt.Errorf("%w: %q", ErrInvalidVehicleType, s)
	}
}

func (t VehicleType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVehicleType, int(t))
	}
	return []byte(t.String()), nil
}

func (t *VehicleType) UnmarshalText(b []byte) error {
	v, err := ParseVehicleType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
