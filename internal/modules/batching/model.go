// README: Route (batch) aggregate and status definitions.
package batching

import (
	"time"

	"tavolo/internal/types"
)

type RouteStatus string

const (
	StatusPendingDriver RouteStatus = "pending_driver"
	StatusAssigned      RouteStatus = "assigned"
	StatusInProgress    RouteStatus = "in_progress"
	StatusCompleted     RouteStatus = "completed"
	StatusCancelled     RouteStatus = "cancelled"
)

// Route groups orders into a single courier trip. The stop list is fixed at
// creation; stops are never added afterwards. Cancelling a route releases
// its member orders back to the unclaimed pool.
type Route struct {
	ID               types.ID
	StoreID          types.ID
	StopOrderIDs     []types.ID
	Status           RouteStatus
	CreatedAt        time.Time
	EstimatedSavings types.Money
}

// AllowedTransitions encodes the monotonic route lifecycle.
var AllowedTransitions = map[RouteStatus][]RouteStatus{
	StatusPendingDriver: {StatusAssigned, StatusCancelled},
	StatusAssigned:      {StatusInProgress, StatusCancelled},
	StatusInProgress:    {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to RouteStatus) bool {
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
