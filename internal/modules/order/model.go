// README: Dispatchable order aggregate and status definitions.
package order

import (
	"time"

	"tavolo/internal/types"
)

type Status string

const (
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusPickedUp  Status = "picked_up"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
	PriorityVIP    Priority = "vip"
)

// Order is an order eligible for courier assignment once the kitchen marks
// it ready. BatchID is nil until the order is claimed, either by a shared
// route or by a synthetic solo batch; it is set exactly once and only the
// route-commit transaction or the solo CAS writes it.
type Order struct {
	ID        types.ID
	StoreID   types.ID
	Pickup    types.Point
	Dropoff   types.Point
	ReadyAt   time.Time
	Deadline  *time.Time
	Priority  Priority
	Status    Status
	BatchID   *types.ID
	CreatedAt time.Time
}

// Batched reports whether the order has been claimed by any batch.
func (o Order) Batched() bool {
	return o.BatchID != nil
}

// AllowedTransitions represents the kitchen-to-delivered order flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusDelivered},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
