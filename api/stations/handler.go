// Package stations serves the station catalog and ETA recommendations.
package stations

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/evstation/api/respond"
	"github.com/kilianp07/evstation/core/geo"
	"github.com/kilianp07/evstation/core/logger"
	coremetrics "github.com/kilianp07/evstation/core/metrics"
	"github.com/kilianp07/evstation/core/model"
	"github.com/kilianp07/evstation/core/ranking"
)

// ErrMissingUser is returned when a recommendation request has no user
// position.
var ErrMissingUser = fmt.Errorf("%w: user position is required", respond.ErrBadRequest)

// RecommendRequest is the body of POST /api/recommendations.
type RecommendRequest struct {
	User        *geo.Point             `json:"user"`
	VehicleType string                 `json:"vehicle_type"`
	Stations    []model.StationReading `json:"stations"`
}

// RecommendResponse lists the stations by ascending ETA.
type RecommendResponse struct {
	RequestID   string                `json:"request_id"`
	VehicleType model.VehicleType     `json:"vehicle_type"`
	Recommended *model.RankedStation  `json:"recommended"`
	Stations    []model.RankedStation `json:"stations"`
}

// Handler serves the station endpoints.
type Handler struct {
	catalog model.Catalog
	sink    coremetrics.MetricsSink
	log     logger.Logger
	now     func() time.Time
}

// NewHandler creates a Handler. A nil sink records nothing.
func NewHandler(catalog model.Catalog, sink coremetrics.MetricsSink, log logger.Logger) *Handler {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Handler{catalog: catalog, sink: sink, log: log, now: time.Now}
}

// List handles GET /api/stations.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.catalog.Stations())
}

// Recommend handles POST /api/recommendations. Stations known to the catalog
// may be sent with their id and dynamic fields only.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	vt, err := model.ParseVehicleType(req.VehicleType)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if req.User == nil {
		respond.Error(w, r, ErrMissingUser)
		return
	}
	states := make([]model.StationState, len(req.Stations))
	for i, s := range req.Stations {
		if states[i], err = h.catalog.Complete(s); err != nil {
			respond.Error(w, r, err)
			return
		}
	}
	ranked, err := ranking.Rank(*req.User, vt, states)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := RecommendResponse{
		RequestID:   respond.RequestID(r),
		VehicleType: vt,
		Stations:    ranked,
	}
	if len(ranked) > 0 {
		resp.Recommended = &ranked[0]
	}
	if err := h.sink.RecordRanking(coremetrics.RankingEvent{
		RequestID:   resp.RequestID,
		VehicleType: vt,
		Candidates:  len(ranked),
		Recommended: resp.Recommended,
		Time:        h.now(),
	}); err != nil {
		h.log.Warnf("record ranking %s: %v", resp.RequestID, err)
	}
	respond.JSON(w, http.StatusOK, resp)
}
