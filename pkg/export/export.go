// Package export writes rankings and capacity reports as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/evstation/core/capacity"
	"github.com/kilianp07/evstation/core/model"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts json or csv, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteRanking writes a ranked station list in the given format.
func WriteRanking(w io.Writer, f Format, ranked []model.RankedStation) error {
	if f == FormatCSV {
		return WriteRankingCSV(w, ranked)
	}
	return WriteJSON(w, ranked)
}

// WriteRankingCSV writes one row per ranked station, best first.
func WriteRankingCSV(w io.Writer, ranked []model.RankedStation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "station_id", "name", "distance_km", "queue_time_min", "travel_time_min", "total_eta_min", "recommended"}); err != nil {
		return err
	}
	for i, r := range ranked {
		rec := []string{
			strconv.Itoa(i + 1),
			r.ID,
			r.Name,
			formatFloat(r.DistanceKm),
			formatFloat(r.QueueTimeMinutes),
			formatFloat(r.TravelTimeMinutes),
			formatFloat(r.TotalETAMinutes),
			strconv.FormatBool(r.IsRecommended),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReport writes a capacity report in the given format. CSV output
// carries the message as a trailing comment line.
func WriteReport(w io.Writer, f Format, rep capacity.Report) error {
	if f == FormatCSV {
		return WriteReportCSV(w, rep)
	}
	return WriteJSON(w, rep)
}

// WriteReportCSV writes one row per report result. Unknown capacities are
// left empty.
func WriteReportCSV(w io.Writer, rep capacity.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"station_id", "station_name", "vehicle_type", "forecasted_peak", "capacity", "unmet_demand", "overload_ratio", "overloaded", "tier", "recommendation"}); err != nil {
		return err
	}
	for _, r := range rep.Results {
		rec := []string{
			r.StationID,
			r.StationName,
			r.VehicleType.String(),
			formatFloat(r.ForecastedPeak),
			optionalInt(r.Capacity),
			optionalFloat(r.UnmetDemand),
			optionalFloat(r.OverloadRatio),
			strconv.FormatBool(r.Overloaded),
			capacity.RowTier(r),
			r.Recommendation,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "# %s\n", rep.Message)
	return err
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func optionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func optionalInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
