package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseVehicleType(t *testing.T) {
	checks := []struct {
		in   string
		want VehicleType
	}{
		{"car", VehicleCar},
		{"Scooter", VehicleScooter},
		{" CAR ", VehicleCar},
	}
	for _, c := range checks {
		got, err := ParseVehicleType(c.in)
		if err != nil {
			t.Fatalf("parse %q: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("parse %q: got %v want %v", c.in, got, c.want)
		}
	}
	if _, err := ParseVehicleType("truck"); !errors.Is(err, ErrInvalidVehicleType) {
		t.Fatalf("expected ErrInvalidVehicleType got %v", err)
	}
}

func TestVehicleTypeJSON(t *testing.T) {
	var row ForecastRow
	if err := json.Unmarshal([]byte(`{"station_id":"s1","vehicle_type":"scooter","forecasted_peak":3}`), &row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if row.VehicleType != VehicleScooter {
		t.Fatalf("expected scooter got %v", row.VehicleType)
	}
	out, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(out) != `{"station_id":"s1","station_name":"","vehicle_type":"scooter","forecasted_peak":3}` {
		t.Fatalf("unexpected json %s", out)
	}
	if err := json.Unmarshal([]byte(`{"vehicle_type":"bike"}`), &row); !errors.Is(err, ErrInvalidVehicleType) {
		t.Fatalf("expected invalid vehicle type error got %v", err)
	}
}

func TestStationStateOccupancy(t *testing.T) {
	s := StationState{CarPorts: 4, CarWaiting: 2, CarAvgSessionMinutes: 60, ScooterPorts: 6, ScooterWaiting: 1, ScooterAvgSessionMinutes: 30}
	p, w, m := s.Occupancy(VehicleCar)
	if p != 4 || w != 2 || m != 60 {
		t.Fatalf("car occupancy %d %d %v", p, w, m)
	}
	p, w, m = s.Occupancy(VehicleScooter)
	if p != 6 || w != 1 || m != 30 {
		t.Fatalf("scooter occupancy %d %d %v", p, w, m)
	}
}

func TestVehicleTypeZeroValueIsInvalid(t *testing.T) {
	var zero VehicleType
	if zero.Valid() || zero != VehicleUnknown {
		t.Fatalf("zero value must be VehicleUnknown and invalid, got %v", zero)
	}
	if _, err := zero.MarshalText(); !errors.Is(err, ErrInvalidVehicleType) {
		t.Fatalf("expected marshal error got %v", err)
	}

	var row CapacityRow
	if err := json.Unmarshal([]byte(`{"station_name":"A","rated_capacity":25}`), &row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if row.VehicleType.Valid() {
		t.Fatalf("missing vehicle_type decoded as %v", row.VehicleType)
	}
	if err := json.Unmarshal([]byte(`{"vehicle_type":""}`), &row); !errors.Is(err, ErrInvalidVehicleType) {
		t.Fatalf("expected error for empty vehicle_type got %v", err)
	}
}
