// README: Weighted penalty model scoring one courier against one pickup point.
package courier

import (
	"fmt"
	"time"

	"tavolo/internal/geo"
	"tavolo/internal/types"
)

// Scoring weights. These are business policy, not physics: each constant
// encodes how strongly operations wants a factor to count against (or for)
// a courier relative to one kilometre of distance.
const (
	// weightPerKm: distance is the primary driver of pickup ETA.
	weightPerKm = 1.0
	// weightPerActiveOrder discourages piling orders onto loaded couriers.
	weightPerActiveOrder = 5.0
	// penaltyBatteryCritical: below batteryCriticalPct the phone (or bike)
	// dying mid-delivery is a near-certain failure; worth ~50km of detour.
	penaltyBatteryCritical = 50.0
	// penaltyBatteryLow is the soft-risk band under batteryLowPct.
	penaltyBatteryLow = 10.0
	// penaltyBusy deprioritizes busy couriers without excluding them.
	penaltyBusy = 20.0
	// bonusReturning rewards couriers already heading back to the store.
	bonusReturning = -3.0
	// penaltyStaleLocation effectively disqualifies couriers whose GPS fix
	// is older than staleLocationMaxAge; a stale position can't be trusted
	// for any distance math above it.
	penaltyStaleLocation = 100.0

	batteryCriticalPct = 15
	batteryLowPct      = 30

	staleLocationMaxAge = 5 * time.Minute
)

// Score computes the weighted penalty for one courier against one pickup
// point. Offline couriers are not scored (filtered by the selector); every
// other status is scored rather than excluded, so a ranked pool always
// degrades to "least bad" instead of coming up empty.
func Score(c Courier, pickup types.Point, now time.Time) ScoredCourier {
	distance := geo.DistanceKm(c.Location, pickup)

	score := distance * weightPerKm
	reasons := []string{fmt.Sprintf("distance %.1fkm", distance)}

	if c.ActiveOrders > 0 {
		score += float64(c.ActiveOrders) * weightPerActiveOrder
		reasons = append(reasons, fmt.Sprintf("%d active orders", c.ActiveOrders))
	}

	switch {
	case c.BatteryLevel < batteryCriticalPct:
		score += penaltyBatteryCritical
		reasons = append(reasons, fmt.Sprintf("battery critical (%d%%)", c.BatteryLevel))
	case c.BatteryLevel < batteryLowPct:
		score += penaltyBatteryLow
		reasons = append(reasons, fmt.Sprintf("battery low (%d%%)", c.BatteryLevel))
	}

	switch c.Status {
	case StatusBusy:
		score += penaltyBusy
		reasons = append(reasons, "busy")
	case StatusReturning:
		score += bonusReturning
		reasons = append(reasons, "returning to store")
	}

	if age := now.Sub(c.LocationUpdatedAt); age > staleLocationMaxAge {
		score += penaltyStaleLocation
		reasons = append(reasons, fmt.Sprintf("location stale (%s)", age.Round(time.Second)))
	}

	return ScoredCourier{
		Courier:    c,
		Score:      score,
		DistanceKm: distance,
		Reasons:    reasons,
	}
}
