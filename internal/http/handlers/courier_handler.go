// README: Courier presence endpoints (heartbeat, sign-off).
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tavolo/internal/modules/courier"
	"tavolo/internal/types"
)

type CourierHandler struct {
	couriers *courier.Directory
}

func NewCourierHandler(couriers *courier.Directory) *CourierHandler {
	return &CourierHandler{couriers: couriers}
}

type heartbeatReq struct {
	StoreID      string  `json:"store_id"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	ActiveOrders int     `json:"active_orders"`
	BatteryLevel int     `json:"battery_level"`
	Status       string  `json:"status"`
}

// Heartbeat handles PUT /api/couriers/:id/heartbeat. The courier client is
// the source of truth for everything reported here.
func (h *CourierHandler) Heartbeat(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing courier id")
		return
	}
	var req heartbeatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.StoreID = strings.TrimSpace(req.StoreID)
	if req.StoreID == "" {
		writeError(c, http.StatusBadRequest, "missing store_id")
		return
	}
	status := courier.Status(req.Status)
	switch status {
	case courier.StatusOnline, courier.StatusBusy, courier.StatusReturning, courier.StatusOffline:
	default:
		writeError(c, http.StatusBadRequest, "invalid status")
		return
	}

	err := h.couriers.Heartbeat(c.Request.Context(), courier.Courier{
		ID:                types.ID(id),
		StoreID:           types.ID(req.StoreID),
		Location:          types.Point{Lat: req.Lat, Lng: req.Lng},
		LocationUpdatedAt: time.Now().UTC(),
		ActiveOrders:      req.ActiveOrders,
		BatteryLevel:      req.BatteryLevel,
		Status:            status,
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"courier_id": id, "status": status})
}

// SignOff handles DELETE /api/couriers/:id.
func (h *CourierHandler) SignOff(c *gin.Context) {
	id := c.Param("id")
	storeID := strings.TrimSpace(c.Query("store_id"))
	if id == "" || storeID == "" {
		writeError(c, http.StatusBadRequest, "missing courier or store id")
		return
	}
	if err := h.couriers.Remove(c.Request.Context(), types.ID(storeID), types.ID(id)); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"courier_id": id, "removed": true})
}
