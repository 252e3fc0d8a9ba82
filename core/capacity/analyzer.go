// Package capacity flags charging stations whose forecasted peak demand
// approaches or exceeds their rated port capacity.
package capacity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/evstation/core/model"
)

const (
	// OverloadThreshold is the peak/capacity ratio above which a station is overloaded.
	OverloadThreshold = 0.9
	// VehiclesPerPort converts unmet demand into a number of ports to add.
	VehiclesPerPort = 5
	// MaxResults bounds the size of a report.
	MaxResults = 3
)

const (
	MsgExceedsCapacity = "Some stations exceed their maximum capacity! Immediate action required."
	MsgNearCapacity    = "Some stations are above 90% capacity. Consider adding more ports."
	MsgNoOverload      = "No station exceeds 90% of its capacity. Showing top 3 busiest stations."
	MsgNoData          = "No forecast data available."

	RecommendMonitor = "Monitor usage"
)

// ErrInvalidForecast is returned for negative or non-finite forecasted peaks.
var ErrInvalidForecast = errors.New("invalid forecast row")

// Report is the bounded shortlist produced by Analyze.
type Report struct {
	Results []model.OverloadResult `json:"results"`
	Message string                 `json:"message"`
}

// Overloaded reports whether any row of the report is overloaded.
func (r Report) Overloaded() bool {
	for _, res := range r.Results {
		if res.Overloaded {
			return true
		}
	}
	return false
}

type groupKey struct {
	id      string
	name    string
	vehicle model.VehicleType
}

func (a groupKey) less(b groupKey) bool {
	if a.id != b.id {
		return a.id < b.id
	}
	if a.name != b.name {
		return a.name < b.name
	}
	return a.vehicle < b.vehicle
}

// Analyze aggregates forecast rows to one peak per station and vehicle type,
// joins the capacity table and returns at most MaxResults rows sorted by
// descending peak. Overloaded rows always make the cut before busy but
// healthy ones. Rows for several vehicle types may be mixed, in which case
// they compete for the same slots; use AnalyzeByVehicleType to keep them apart.
func Analyze(rows []model.ForecastRow, table Table) (Report, error) {
	if len(rows) == 0 {
		return Report{Results: []model.OverloadResult{}, Message: MsgNoData}, nil
	}

	peaks := make(map[groupKey]float64, len(rows))
	for _, r := range rows {
		if math.IsNaN(r.ForecastedPeak) || math.IsInf(r.ForecastedPeak, 0) || r.ForecastedPeak < 0 {
			return Report{}, fmt.Errorf("%w: station %s peak %v", ErrInvalidForecast, r.StationID, r.ForecastedPeak)
		}
		if !r.VehicleType.Valid() {
			return Report{}, fmt.Errorf("%w: station %s: %w", ErrInvalidForecast, r.StationID, model.ErrInvalidVehicleType)
		}
		k := groupKey{id: r.StationID, name: r.StationName, vehicle: r.VehicleType}
		if cur, ok := peaks[k]; !ok || r.ForecastedPeak > cur {
			peaks[k] = r.ForecastedPeak
		}
	}

	keys := make([]groupKey, 0, len(peaks))
	for k := range peaks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	all := make([]model.OverloadResult, 0, len(keys))
	for _, k := range keys {
		all = append(all, classify(k, peaks[k], table))
	}
	byPeakDesc(all)

	var overloaded, healthy []model.OverloadResult
	for _, r := range all {
		if r.Overloaded {
			overloaded = append(overloaded, r)
		} else {
			healthy = append(healthy, r)
		}
	}

	if len(overloaded) == 0 {
		return Report{Results: truncate(healthy), Message: MsgNoOverload}, nil
	}

	msg := MsgNearCapacity
	for _, r := range overloaded {
		if r.UnmetDemand != nil && *r.UnmetDemand > 0 {
			msg = MsgExceedsCapacity
			break
		}
	}
	selected := truncate(overloaded)
	for _, r := range healthy {
		if len(selected) >= MaxResults {
			break
		}
		selected = append(selected, r)
	}
	byPeakDesc(selected)
	return Report{Results: selected, Message: msg}, nil
}

// AnalyzeByVehicleType runs one analysis per vehicle type present in rows.
func AnalyzeByVehicleType(rows []model.ForecastRow, table Table) (map[model.VehicleType]Report, error) {
	split := make(map[model.VehicleType][]model.ForecastRow)
	for _, r := range rows {
		split[r.VehicleType] = append(split[r.VehicleType], r)
	}
	out := make(map[model.VehicleType]Report, len(split))
	for vt, part := range split {
		rep, err := Analyze(part, table)
		if err != nil {
			return nil, err
		}
		out[vt] = rep
	}
	return out, nil
}

// Recommendation returns the remediation text for an overloaded row.
func Recommendation(unmet float64) string {
	if unmet <= 0 {
		return RecommendMonitor
	}
	return fmt.Sprintf("Add %d more ports", int(math.Ceil(unmet/VehiclesPerPort)))
}

func classify(k groupKey, peak float64, table Table) model.OverloadResult {
	res := model.OverloadResult{
		StationID:      k.id,
		StationName:    k.name,
		VehicleType:    k.vehicle,
		ForecastedPeak: peak,
		Recommendation: RecommendMonitor,
	}
	capacity, ok := table.Lookup(k.name, k.vehicle)
	if !ok {
		return res
	}
	unmet := peak - float64(capacity)
	res.Capacity = &capacity
	res.UnmetDemand = &unmet

	// A station without ports is overloaded by any demand at all.
	if capacity <= 0 {
		res.Overloaded = peak > 0
	} else {
		ratio := peak / float64(capacity)
		res.OverloadRatio = &ratio
		res.Overloaded = ratio > OverloadThreshold
	}
	if res.Overloaded {
		res.Recommendation = Recommendation(unmet)
	}
	return res
}

func byPeakDesc(rs []model.OverloadResult) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].ForecastedPeak > rs[j].ForecastedPeak })
}

func truncate(rs []model.OverloadResult) []model.OverloadResult {
	if len(rs) > MaxResults {
		rs = rs[:MaxResults]
	}
	out := make([]model.OverloadResult, len(rs), MaxResults)
	copy(out, rs)
	return out
}
