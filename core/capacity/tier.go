package capacity

import "github.com/kilianp07/evstation/core/model"

// Tiers of a report row, from worst to best.
const (
	TierExceeded     = "exceeded"
	TierNearCapacity = "near_capacity"
	TierNormal       = "normal"
	TierUnknown      = "unknown"
	TierNoData       = "no_data"
)

// RowTier classifies a single result: exceeded when demand is above
// capacity, near capacity when overloaded but still within capacity, unknown
// when capacity is missing.
func RowTier(r model.OverloadResult) string {
	switch {
	case r.Capacity == nil:
		return TierUnknown
	case r.Overloaded && r.UnmetDemand != nil && *r.UnmetDemand > 0:
		return TierExceeded
	case r.Overloaded:
		return TierNearCapacity
	default:
		return TierNormal
	}
}

// Tier returns the worst row tier of the report, ignoring rows with unknown
// capacity, or TierNoData for an empty report.
func (r Report) Tier() string {
	if len(r.Results) == 0 {
		return TierNoData
	}
	tier := TierNormal
	for _, res := range r.Results {
		switch RowTier(res) {
		case TierExceeded:
			return TierExceeded
		case TierNearCapacity:
			tier = TierNearCapacity
		}
	}
	return tier
}
