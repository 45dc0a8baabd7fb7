// README: Dispatch endpoints (courier suggestion and full ranking).
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tavolo/internal/modules/courier"
	"tavolo/internal/modules/dispatch"
	"tavolo/internal/types"
)

type DispatchHandler struct {
	dispatch *dispatch.Service
}

func NewDispatchHandler(dispatchSvc *dispatch.Service) *DispatchHandler {
	return &DispatchHandler{dispatch: dispatchSvc}
}

type suggestReq struct {
	StoreID   string     `json:"store_id"`
	PickupLat float64    `json:"pickup_lat"`
	PickupLng float64    `json:"pickup_lng"`
	Deadline  *time.Time `json:"deadline"`
}

// Suggest handles POST /api/dispatch/suggest.
func (h *DispatchHandler) Suggest(c *gin.Context) {
	var req suggestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.StoreID = strings.TrimSpace(req.StoreID)
	if req.StoreID == "" {
		writeError(c, http.StatusBadRequest, "missing store_id")
		return
	}

	pickup := types.Point{Lat: req.PickupLat, Lng: req.PickupLng}
	suggestion, err := h.dispatch.SuggestForStore(c.Request.Context(), types.ID(req.StoreID), pickup, req.Deadline)
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"courier":     scoredView(suggestion.Courier),
		"at_risk":     suggestion.Delay.AtRisk,
		"eta_minutes": suggestion.Delay.EtaMinutes,
	})
}

// Rank handles GET /api/stores/:id/couriers/rank.
func (h *DispatchHandler) Rank(c *gin.Context) {
	storeID := c.Param("id")
	if storeID == "" {
		writeError(c, http.StatusBadRequest, "missing store id")
		return
	}
	lat, lng, ok := queryPoint(c)
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid pickup_lat/pickup_lng")
		return
	}

	ranked, err := h.dispatch.RankCouriers(c.Request.Context(), types.ID(storeID), types.Point{Lat: lat, Lng: lng})
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	out := make([]map[string]any, 0, len(ranked))
	for _, sc := range ranked {
		out = append(out, scoredView(sc))
	}
	writeJSON(c, http.StatusOK, map[string]any{"couriers": out})
}

func scoredView(sc courier.ScoredCourier) map[string]any {
	return map[string]any{
		"courier_id":  sc.Courier.ID,
		"score":       sc.Score,
		"distance_km": sc.DistanceKm,
		"reasons":     sc.Reasons,
	}
}
