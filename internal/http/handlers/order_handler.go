// README: Order endpoints (create, get, kitchen-ready trigger).
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tavolo/internal/modules/dispatch"
	"tavolo/internal/modules/order"
	"tavolo/internal/types"
)

type OrderHandler struct {
	orders   *order.Store
	dispatch *dispatch.Service
}

func NewOrderHandler(orders *order.Store, dispatchSvc *dispatch.Service) *OrderHandler {
	return &OrderHandler{orders: orders, dispatch: dispatchSvc}
}

type createOrderReq struct {
	StoreID    string     `json:"store_id"`
	PickupLat  float64    `json:"pickup_lat"`
	PickupLng  float64    `json:"pickup_lng"`
	DropoffLat float64    `json:"dropoff_lat"`
	DropoffLng float64    `json:"dropoff_lng"`
	Priority   string     `json:"priority"`
	Deadline   *time.Time `json:"deadline"`
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.StoreID = strings.TrimSpace(req.StoreID)
	if req.StoreID == "" {
		writeError(c, http.StatusBadRequest, "missing store_id")
		return
	}

	priority := order.Priority(req.Priority)
	if req.Priority == "" {
		priority = order.PriorityNormal
	}

	o := &order.Order{
		ID:        types.ID(uuid.NewString()),
		StoreID:   types.ID(req.StoreID),
		Pickup:    types.Point{Lat: req.PickupLat, Lng: req.PickupLng},
		Dropoff:   types.Point{Lat: req.DropoffLat, Lng: req.DropoffLng},
		Deadline:  req.Deadline,
		Priority:  priority,
		Status:    order.StatusPreparing,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.orders.Create(c.Request.Context(), o); err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, map[string]any{"order_id": o.ID, "status": o.Status})
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	o, err := h.orders.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, orderView(o))
}

// Ready handles POST /api/orders/:id/ready. Marks the order ready and runs
// the dispatch flow; the response reports which batch claimed the order.
func (h *OrderHandler) Ready(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}

	ctx := c.Request.Context()
	if err := h.orders.MarkReady(ctx, types.ID(id), time.Now().UTC()); err != nil {
		writeDispatchError(c, err)
		return
	}
	outcome, err := h.dispatch.OnOrderReady(ctx, types.ID(id))
	if err != nil {
		writeDispatchError(c, err)
		return
	}

	resp := map[string]any{
		"order_id":        outcome.OrderID,
		"batch_id":        outcome.BatchID,
		"already_batched": outcome.AlreadyBatched,
	}
	if outcome.Route != nil {
		resp["route"] = routeView(outcome.Route)
	}
	writeJSON(c, http.StatusOK, resp)
}

func orderView(o *order.Order) map[string]any {
	v := map[string]any{
		"order_id": o.ID,
		"store_id": o.StoreID,
		"status":   o.Status,
		"priority": o.Priority,
		"pickup":   o.Pickup,
		"dropoff":  o.Dropoff,
	}
	if !o.ReadyAt.IsZero() {
		v["ready_at"] = o.ReadyAt
	}
	if o.Deadline != nil {
		v["deadline"] = o.Deadline
	}
	if o.BatchID != nil {
		v["batch_id"] = o.BatchID
	}
	return v
}
