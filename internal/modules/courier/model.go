// README: Courier state and derived scoring results.
package courier

import (
	"time"

	"tavolo/internal/types"
)

type Status string

const (
	StatusOnline    Status = "online"
	StatusBusy      Status = "busy"
	StatusReturning Status = "returning"
	StatusOffline   Status = "offline"
)

// Courier is read-only input to the dispatch engine. Location, battery and
// status are reported by the courier's own client; the engine never writes
// any of these fields.
type Courier struct {
	ID                types.ID
	StoreID           types.ID
	Location          types.Point
	LocationUpdatedAt time.Time
	ActiveOrders      int
	BatteryLevel      int // 0-100
	Status            Status
}

// ScoredCourier is a courier annotated with its fitness for one pickup.
// Derived, never persisted. Lower score is better.
type ScoredCourier struct {
	Courier    Courier
	Score      float64
	DistanceKm float64
	Reasons    []string
}
