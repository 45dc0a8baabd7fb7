// README: Ranking and selection of scored couriers for a pickup.
package courier

import (
	"sort"
	"time"

	"tavolo/internal/types"
)

// DefaultMaxAcceptableEtaMinutes is the delay-risk ceiling applied when an
// order carries no explicit deadline.
const DefaultMaxAcceptableEtaMinutes = 45

// Rank filters out offline couriers, scores the rest against the pickup
// point and returns the list sorted best-first. Ties break on courier ID so
// repeated calls over the same pool are deterministic.
func Rank(couriers []Courier, pickup types.Point, now time.Time) []ScoredCourier {
	scored := make([]ScoredCourier, 0, len(couriers))
	for _, c := range couriers {
		if c.Status == StatusOffline {
			continue
		}
		scored = append(scored, Score(c, pickup, now))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score < scored[j].Score
		}
		return scored[i].Courier.ID < scored[j].Courier.ID
	})
	return scored
}

// SelectBest returns the lowest-scoring courier for the pickup, or ok=false
// when the pool is empty or entirely offline. An empty pool is a normal
// operational condition, not an error.
func SelectBest(couriers []Courier, pickup types.Point, now time.Time) (ScoredCourier, bool) {
	ranked := Rank(couriers, pickup, now)
	if len(ranked) == 0 {
		return ScoredCourier{}, false
	}
	return ranked[0], true
}

// DelayAssessment is advisory: dispatch may proceed with AtRisk set, the
// flag is surfaced to the operator.
type DelayAssessment struct {
	AtRisk     bool
	EtaMinutes int
}

// AssessDelayRisk flags a courier ETA that would miss the order's deadline
// (when present) or exceed the acceptable ceiling.
func AssessDelayRisk(etaMinutes int, deadline *time.Time, now time.Time, maxAcceptableMinutes int) DelayAssessment {
	if maxAcceptableMinutes <= 0 {
		maxAcceptableMinutes = DefaultMaxAcceptableEtaMinutes
	}
	atRisk := etaMinutes > maxAcceptableMinutes
	if deadline != nil {
		arrival := now.Add(time.Duration(etaMinutes) * time.Minute)
		if arrival.After(*deadline) {
			atRisk = true
		}
	}
	return DelayAssessment{AtRisk: atRisk, EtaMinutes: etaMinutes}
}
