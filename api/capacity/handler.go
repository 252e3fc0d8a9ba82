// Package capacity serves capacity analyses and the latest planner reports.
package capacity

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/kilianp07/evstation/api/respond"
	corecap "github.com/kilianp07/evstation/core/capacity"
	"github.com/kilianp07/evstation/core/forecast"
	"github.com/kilianp07/evstation/core/model"
	"github.com/kilianp07/evstation/core/planning"
)

// DefaultBusiest is the number of stations returned by Busiest without n.
const DefaultBusiest = 5

// AnalyzeRequest is the body of POST /api/capacity/analyze. Capacity falls
// back to the configured table when omitted.
type AnalyzeRequest struct {
	Rows     []model.ForecastRow `json:"rows"`
	Capacity []model.CapacityRow `json:"capacity,omitempty"`
}

// AnalyzeResponse holds one report per vehicle type present in the rows.
type AnalyzeResponse struct {
	Reports map[model.VehicleType]corecap.Report `json:"reports"`
}

// Handler serves the capacity endpoints.
type Handler struct {
	table corecap.Table
	store planning.Store
}

// NewHandler creates a Handler backed by the configured capacity table and
// the planner's report store.
func NewHandler(table corecap.Table, store planning.Store) *Handler {
	return &Handler{table: table, store: store}
}

// Analyze handles POST /api/capacity/analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	table := h.table
	if req.Capacity != nil {
		if err := corecap.ValidateRows(req.Capacity); err != nil {
			respond.Error(w, r, err)
			return
		}
		table = corecap.NewTable(req.Capacity)
	}
	reports, err := corecap.AnalyzeByVehicleType(req.Rows, table)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, AnalyzeResponse{Reports: reports})
}

// Report handles GET /api/capacity/report?vehicle_type=car.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	vt, err := model.ParseVehicleType(r.URL.Query().Get("vehicle_type"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	ev, ok := h.store.Latest(vt)
	if !ok {
		respond.Error(w, r, fmt.Errorf("%w: no %s report yet", respond.ErrNotFound, vt))
		return
	}
	respond.JSON(w, http.StatusOK, ev)
}

// Busiest handles GET /api/capacity/busiest?n=5&vehicle_type=car. Without
// vehicle_type every stored report contributes.
func (h *Handler) Busiest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n := DefaultBusiest
	if raw := q.Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respond.Error(w, r, fmt.Errorf("%w: n must be a positive integer", respond.ErrBadRequest))
			return
		}
		n = v
	}

	var peaks []forecast.PeakHour
	if raw := q.Get("vehicle_type"); raw != "" {
		vt, err := model.ParseVehicleType(raw)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		ev, ok := h.store.Latest(vt)
		if !ok {
			respond.Error(w, r, fmt.Errorf("%w: no %s report yet", respond.ErrNotFound, vt))
			return
		}
		peaks = ev.Peaks
	} else {
		for _, ev := range h.store.List() {
			peaks = append(peaks, ev.Peaks...)
		}
	}
	out := forecast.TopBusiest(peaks, n)
	respond.JSON(w, http.StatusOK, out)
}
