// README: Selector unit tests covering ranking, selection and delay risk.
package courier

import (
	"testing"
	"time"

	"tavolo/internal/types"
)

func TestSelectBest_PrefersLowestScore(t *testing.T) {
	pickup := types.Point{Lat: 25.033, Lng: 121.565}

	near := freshCourier("near", pointAtKm(pickup, 0.5))
	near.BatteryLevel = 10 // critical: 50.5 total

	far := freshCourier("far", pointAtKm(pickup, 3)) // 3.0 total

	best, ok := SelectBest([]Courier{near, far}, pickup, testNow)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if best.Courier.ID != "far" {
		t.Errorf("selected %s, want far (scores: near=%f)", best.Courier.ID, best.Score)
	}
}

func TestSelectBest_EmptyPool(t *testing.T) {
	pickup := types.Point{Lat: 25.033, Lng: 121.565}

	if _, ok := SelectBest(nil, pickup, testNow); ok {
		t.Error("expected no candidate from nil pool")
	}
	if _, ok := SelectBest([]Courier{}, pickup, testNow); ok {
		t.Error("expected no candidate from empty pool")
	}
}

func TestSelectBest_AllOffline(t *testing.T) {
	pickup := types.Point{Lat: 25.033, Lng: 121.565}
	c1 := freshCourier("c1", pickup)
	c1.Status = StatusOffline
	c2 := freshCourier("c2", pickup)
	c2.Status = StatusOffline

	if _, ok := SelectBest([]Courier{c1, c2}, pickup, testNow); ok {
		t.Error("offline couriers must not be scored or returned")
	}
}

func TestSelectBest_TieBreaksOnID(t *testing.T) {
	pickup := types.Point{Lat: 25.033, Lng: 121.565}
	// Identical state at the same point: scores tie exactly.
	b := freshCourier("b", pickup)
	a := freshCourier("a", pickup)
	c := freshCourier("c", pickup)

	for i := 0; i < 10; i++ {
		best, ok := SelectBest([]Courier{b, a, c}, pickup, testNow)
		if !ok || best.Courier.ID != "a" {
			t.Fatalf("iteration %d: got %s, want deterministic winner a", i, best.Courier.ID)
		}
	}
}

func TestRank_FullOrderingAndFiltering(t *testing.T) {
	pickup := types.Point{Lat: 25.033, Lng: 121.565}

	best := freshCourier("best", pointAtKm(pickup, 1))
	loaded := freshCourier("loaded", pointAtKm(pickup, 1))
	loaded.ActiveOrders = 2
	offline := freshCourier("offline", pickup)
	offline.Status = StatusOffline

	ranked := Rank([]Courier{loaded, offline, best}, pickup, testNow)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked couriers, got %d", len(ranked))
	}
	if ranked[0].Courier.ID != "best" || ranked[1].Courier.ID != "loaded" {
		t.Errorf("unexpected order: %s, %s", ranked[0].Courier.ID, ranked[1].Courier.ID)
	}
}

func TestAssessDelayRisk(t *testing.T) {
	deadlineIn20 := testNow.Add(20 * time.Minute)
	deadlineIn60 := testNow.Add(60 * time.Minute)

	tests := []struct {
		name       string
		etaMinutes int
		deadline   *time.Time
		maxMinutes int
		wantAtRisk bool
	}{
		{"eta beats deadline", 10, &deadlineIn20, 45, false},
		{"eta misses deadline", 35, &deadlineIn20, 45, true},
		{"no deadline, under ceiling", 35, nil, 45, false},
		{"no deadline, over ceiling", 50, nil, 45, true},
		{"generous deadline but over ceiling", 50, &deadlineIn60, 45, true},
		{"zero ceiling falls back to default", 50, nil, 0, true},
		{"zero ceiling default pass", 40, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessDelayRisk(tt.etaMinutes, tt.deadline, testNow, tt.maxMinutes)
			if got.AtRisk != tt.wantAtRisk {
				t.Errorf("AtRisk = %v, want %v", got.AtRisk, tt.wantAtRisk)
			}
			if got.EtaMinutes != tt.etaMinutes {
				t.Errorf("EtaMinutes = %d, want %d", got.EtaMinutes, tt.etaMinutes)
			}
		})
	}
}
