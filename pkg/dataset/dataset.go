// Package dataset reads station states, forecast rows and capacity rows from
// JSON, YAML or CSV files.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/evstation/core/geo"
	"github.com/kilianp07/evstation/core/model"
)

// Format names an input encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CSV  Format = "csv"
)

// FormatOf infers the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".csv":
		return CSV, nil
	default:
		return "", fmt.Errorf("unsupported input format: %s", ext)
	}
}

// StatesFile is the document accepted by LoadStates for JSON and YAML.
type StatesFile struct {
	User        *geo.Point             `json:"user"`
	VehicleType model.VehicleType      `json:"vehicle_type"`
	Stations    []model.StationReading `json:"stations"`
}

// LoadStates reads a recommendation request from a JSON or YAML file.
func LoadStates(path string) (StatesFile, error) {
	var out StatesFile
	err := loadFile(path, &out)
	return out, err
}

// LoadForecastRows reads forecast rows from a JSON, YAML or CSV file. CSV
// files need the columns station_id, station_name, vehicle_type and
// forecasted_peak in any order.
func LoadForecastRows(path string) ([]model.ForecastRow, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if f != CSV {
		var rows []model.ForecastRow
		err := loadFile(path, &rows)
		return rows, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return DecodeForecastCSV(fh)
}

// LoadCapacityRows reads capacity rows from a JSON, YAML or CSV file. CSV
// files need the columns station_name, vehicle_type and rated_capacity.
func LoadCapacityRows(path string) ([]model.CapacityRow, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if f != CSV {
		var rows []model.CapacityRow
		err := loadFile(path, &rows)
		return rows, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return DecodeCapacityCSV(fh)
}

// loadFile decodes JSON or YAML into out. YAML is converted to JSON first so
// that the json tags of the model types apply to both formats.
func loadFile(path string, out any) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	if f == CSV {
		return fmt.Errorf("%s: csv is not supported for this input", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if f == YAML {
		var doc any
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if b, err = json.Marshal(doc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// DecodeForecastCSV parses forecast rows from CSV with a header line.
func DecodeForecastCSV(r io.Reader) ([]model.ForecastRow, error) {
	var rows []model.ForecastRow
	err := readCSV(r, []string{"station_id", "station_name", "vehicle_type", "forecasted_peak"}, func(rec map[string]string) error {
		vt, err := model.ParseVehicleType(rec["vehicle_type"])
		if err != nil {
			return err
		}
		peak, err := strconv.ParseFloat(rec["forecasted_peak"], 64)
		if err != nil {
			return fmt.Errorf("forecasted_peak: %w", err)
		}
		rows = append(rows, model.ForecastRow{
			StationID:      rec["station_id"],
			StationName:    rec["station_name"],
			VehicleType:    vt,
			ForecastedPeak: peak,
		})
		return nil
	})
	return rows, err
}

// DecodeCapacityCSV parses capacity rows from CSV with a header line.
func DecodeCapacityCSV(r io.Reader) ([]model.CapacityRow, error) {
	var rows []model.CapacityRow
	err := readCSV(r, []string{"station_name", "vehicle_type", "rated_capacity"}, func(rec map[string]string) error {
		vt, err := model.ParseVehicleType(rec["vehicle_type"])
		if err != nil {
			return err
		}
		c, err := strconv.Atoi(rec["rated_capacity"])
		if err != nil {
			return fmt.Errorf("rated_capacity: %w", err)
		}
		rows = append(rows, model.CapacityRow{StationName: rec["station_name"], VehicleType: vt, RatedCapacity: c})
		return nil
	})
	return rows, err
}

func readCSV(r io.Reader, required []string, fn func(rec map[string]string) error) error {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("csv: missing header")
	}
	if err != nil {
		return err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return fmt.Errorf("csv: missing column %q", col)
		}
	}
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		rec := make(map[string]string, len(required))
		for _, col := range required {
			rec[col] = strings.TrimSpace(fields[idx[col]])
		}
		if err := fn(rec); err != nil {
			return fmt.Errorf("csv line %d: %w", line, err)
		}
	}
}
