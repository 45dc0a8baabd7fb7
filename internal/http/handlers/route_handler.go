// README: Route endpoints (inspection and lifecycle transitions).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tavolo/internal/modules/batching"
	"tavolo/internal/types"
)

type RouteHandler struct {
	routes *batching.Store
}

func NewRouteHandler(routes *batching.Store) *RouteHandler {
	return &RouteHandler{routes: routes}
}

// Get handles GET /api/routes/:id.
func (h *RouteHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing route id")
		return
	}
	r, err := h.routes.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, routeView(r))
}

type advanceReq struct {
	To string `json:"to"`
}

// Advance handles POST /api/routes/:id/advance. Moves the route to the
// requested status when the lifecycle allows it.
func (h *RouteHandler) Advance(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing route id")
		return
	}
	var req advanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx := c.Request.Context()
	r, err := h.routes.Get(ctx, types.ID(id))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	ok, err := h.routes.UpdateStatus(ctx, r.ID, r.Status, batching.RouteStatus(req.To))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	if !ok {
		writeError(c, http.StatusConflict, "transition not allowed")
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"route_id": r.ID, "status": req.To})
}

// Cancel handles POST /api/routes/:id/cancel.
func (h *RouteHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing route id")
		return
	}
	if err := h.routes.Cancel(c.Request.Context(), types.ID(id)); err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"route_id": id, "status": batching.StatusCancelled})
}

func routeView(r *batching.Route) map[string]any {
	return map[string]any{
		"route_id":          r.ID,
		"store_id":          r.StoreID,
		"stop_order_ids":    r.StopOrderIDs,
		"status":            r.Status,
		"created_at":        r.CreatedAt,
		"estimated_savings": r.EstimatedSavings,
	}
}
