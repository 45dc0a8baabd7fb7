// README: Drop-off clustering; pairs a newly-ready order with its nearest neighbor.
package batching

import (
	"tavolo/internal/geo"
	"tavolo/internal/modules/order"
)

// DefaultRadiusKm is the maximum drop-off distance for two orders to share
// a route.
const DefaultRadiusKm = 1.0

// Batch size is capped at pairs. Going beyond two stops turns clustering
// into a small vehicle-routing problem (stop ordering starts to matter) and
// is deliberately not attempted here.
const maxBatchSize = 2

// FindPartner scans the candidate pool for the ready, unclaimed order from
// the same store whose drop-off lies closest to newOrder's drop-off, within
// radiusKm (inclusive). Distance ties break on earliest ReadyAt, then on ID
// so the choice is deterministic. ok=false means solo dispatch.
//
// Pure function over its inputs; the caller supplies the pool and the
// atomic claim happens elsewhere, so a stale pool costs at most a Conflict.
func FindPartner(newOrder order.Order, pool []order.Order, radiusKm float64) (order.Order, bool) {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	var best order.Order
	bestDist := -1.0
	found := false

	for _, cand := range pool {
		if cand.ID == newOrder.ID || cand.StoreID != newOrder.StoreID {
			continue
		}
		if cand.Status != order.StatusReady || cand.Batched() {
			continue
		}
		d := geo.DistanceKm(newOrder.Dropoff, cand.Dropoff)
		if d > radiusKm {
			continue
		}
		if !found || d < bestDist || (d == bestDist && firstInLine(cand, best)) {
			best = cand
			bestDist = d
			found = true
		}
	}
	return best, found
}

func firstInLine(a, b order.Order) bool {
	if !a.ReadyAt.Equal(b.ReadyAt) {
		return a.ReadyAt.Before(b.ReadyAt)
	}
	return a.ID < b.ID
}
