package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evstation/core/model"
)

const sample = `server:
  address: ":9000"
  allowed_origins: ["http://localhost:5173"]
metrics:
  prometheus_addr: ":2112"
  sinks:
    - type: "nop"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "cli"
  qos: 1
planning:
  horizon_hours: 48
  interval_seconds: 600
  vehicle_types: ["car"]
forecast:
  type: static
  conf:
    series:
      - station_id: cp
        vehicle_type: car
        hourly: [1, 2, 3]
stations:
  - id: cp
    name: Central Plaza
    latitude: 48.85
    longitude: 2.35
  - id: gn
    name: Gare du Nord
    latitude: 48.88
    longitude: 2.355
capacity:
  - station_name: Central Plaza
    vehicle_type: car
    rated_capacity: 25
  - station_name: Central Plaza
    vehicle_type: Scooter
    rated_capacity: 10
`

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", sample))
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.address", cfg.Server.Address, ":9000"},
		{"server.origins", len(cfg.Server.AllowedOrigins), 1},
		{"server.read_timeout default", cfg.Server.ReadTimeoutSeconds, 10},
		{"logging.level default", cfg.Logging.Level, "info"},
		{"metrics.prometheus_addr", cfg.Metrics.PrometheusAddr, ":2112"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.qos", cfg.MQTT.QoS, byte(1)},
		{"mqtt.topic_prefix default", cfg.MQTT.TopicPrefix, "evstation/capacity"},
		{"planning.horizon", cfg.Planning.HorizonHours, 48},
		{"planning.workers default", cfg.Planning.Workers, 4},
		{"planning.vehicle_types", len(cfg.Planning.VehicleTypes) == 1 && cfg.Planning.VehicleTypes[0] == model.VehicleCar, true},
		{"forecast.type", cfg.Forecast.Type, "static"},
		{"stations", len(cfg.Stations), 2},
		{"station name", cfg.Stations[1].Name, "Gare du Nord"},
		{"capacity rows", len(cfg.Capacity), 2},
		{"capacity vehicle", cfg.Capacity[1].VehicleType, model.VehicleScooter},
		{"capacity value", cfg.Capacity[0].RatedCapacity, 25},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: got %v want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("K_SERVER__ADDRESS", ":7000")
	t.Setenv("K_PLANNING__HORIZON_HOURS", "24")
	cfg, err := Load(writeConfig(t, "config.yaml", sample))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Address)
	assert.Equal(t, 24, cfg.Planning.HorizonHours)
}

func TestLoad_JSONDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{"stations":[{"id":"a","name":"A"}]}`))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 72, cfg.Planning.HorizonHours)
	assert.Equal(t, model.VehicleTypes, cfg.Planning.VehicleTypes)
	assert.Equal(t, "static", cfg.Forecast.Type)
	assert.False(t, cfg.MQTT.Enabled)

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		file string
		data string
	}{
		{"unsupported extension", "config.toml", "a = 1"},
		{"duplicate station", "config.yaml", "stations:\n  - {id: a, name: A}\n  - {id: a, name: B}\n"},
		{"bad vehicle type", "config.yaml", "capacity:\n  - {station_name: A, vehicle_type: truck, rated_capacity: 1}\n"},
		{"negative capacity", "config.yaml", "capacity:\n  - {station_name: A, vehicle_type: car, rated_capacity: -1}\n"},
		{"mqtt without broker", "config.yaml", "mqtt:\n  enabled: true\n"},
		{"bad log level", "config.yaml", "logging:\n  level: loud\n"},
		{"negative horizon", "config.yaml", "planning:\n  horizon_hours: -3\n"},
		{"capacity without vehicle type", "config.yaml", "capacity:\n  - {station_name: A, rated_capacity: 1}\n"},
		{"bad sample rate", "config.yaml", "monitoring:\n  traces_sample_rate: 3\n"},
		{"negative log rotation", "config.yaml", "logging:\n  file: app.log\n  max_backups: -1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.file, tc.data))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
