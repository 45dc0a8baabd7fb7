// README: Order state machine tests (no database).
package order

import (
	"testing"

	"tavolo/internal/types"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy-path forward transitions
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusPickedUp, true},
		{StatusPickedUp, StatusDelivered, true},
		// cancels
		{StatusPreparing, StatusCancelled, true},
		{StatusReady, StatusCancelled, true},
		{StatusPickedUp, StatusCancelled, false}, // courier already en route with the bag
		// invalid: terminal states have no outgoing transitions
		{StatusDelivered, StatusReady, false},
		{StatusCancelled, StatusPreparing, false},
		// invalid: skipping states
		{StatusPreparing, StatusPickedUp, false},
		{StatusPreparing, StatusDelivered, false},
		{StatusReady, StatusDelivered, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestBatched(t *testing.T) {
	var o Order
	if o.Batched() {
		t.Error("zero-value order must be unbatched")
	}
	bid := types.ID("route-1")
	o.BatchID = &bid
	if !o.Batched() {
		t.Error("order with batch id must report batched")
	}
}
