package capacity

import (
	"testing"

	"github.com/kilianp07/evstation/core/model"
)

func TestReportTier(t *testing.T) {
	tbl := table(map[string]int{"a": 10, "b": 10})
	checks := []struct {
		name string
		rows []model.ForecastRow
		want string
	}{
		{"empty", nil, TierNoData},
		{"normal", []model.ForecastRow{row("a", 2)}, TierNormal},
		{"near", []model.ForecastRow{row("a", 9.5), row("b", 1)}, TierNearCapacity},
		{"exceeded", []model.ForecastRow{row("a", 9.5), row("b", 11)}, TierExceeded},
		{"unknown only", []model.ForecastRow{row("zz", 50)}, TierNormal},
	}
	for _, c := range checks {
		rep, err := Analyze(c.rows, tbl)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got := rep.Tier(); got != c.want {
			t.Errorf("%s: tier %s want %s", c.name, got, c.want)
		}
	}
}

func TestRowTier(t *testing.T) {
	rep, err := Analyze([]model.ForecastRow{row("a", 12), row("b", 9.5), row("c", 3), row("zz", 1)},
		table(map[string]int{"a": 10, "b": 10, "c": 10}))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	got := map[string]string{}
	for _, r := range rep.Results {
		got[r.StationID] = RowTier(r)
	}
	if got["a"] != TierExceeded || got["b"] != TierNearCapacity || got["c"] != TierNormal {
		t.Fatalf("unexpected tiers %v", got)
	}
	unknown := model.OverloadResult{StationID: "zz"}
	if RowTier(unknown) != TierUnknown {
		t.Fatalf("expected unknown tier")
	}
}
