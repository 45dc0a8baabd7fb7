// README: Concurrency tests for order-ready triggers (run with -race).
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"tavolo/internal/types"
)

// TestConcurrentOnOrderReady_SamePair fires the ready triggers for two
// mutually-nearest orders at the same time. Whatever the interleaving, each
// order must end with exactly one batch claim and no order may be
// referenced by more than one route.
func TestConcurrentOnOrderReady_SamePair(t *testing.T) {
	ctx := context.Background()
	base := types.Point{Lat: 25.04, Lng: 121.55}

	a := readyOrder("order-a", base, testNow.Add(-time.Minute))
	b := readyOrder("order-b", dropoffAtKm(base, 0.4), testNow)
	store := newMemStore(a, b)
	svc := newTestService(store, &recordingNotifier{})

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	start := make(chan struct{})

	for _, id := range []types.ID{"order-a", "order-b"} {
		wg.Add(1)
		go func(oid types.ID) {
			defer wg.Done()
			<-start
			_, err := svc.OnOrderReady(ctx, oid)
			errs <- err
		}(id)
	}

	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	for _, id := range []types.ID{"order-a", "order-b"} {
		o, err := store.Get(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if o.BatchID == nil {
			t.Errorf("order %s left unclaimed", id)
		}
		if n := store.routesReferencing(id); n > 1 {
			t.Errorf("order %s referenced by %d routes", id, n)
		}
	}
	if n := store.routeCount(); n > 1 {
		t.Errorf("route count = %d, want at most 1 for a single pair", n)
	}
}

// TestConcurrentOnOrderReady_ManyOrders floods one store with triggers for
// a cluster of nearby orders and checks the one-order-one-route invariant
// holds under arbitrary interleavings.
func TestConcurrentOnOrderReady_ManyOrders(t *testing.T) {
	ctx := context.Background()
	base := types.Point{Lat: 25.04, Lng: 121.55}

	const n = 8
	ids := make([]types.ID, 0, n)
	store := newMemStore()
	for i := 0; i < n; i++ {
		id := types.ID(fmt.Sprintf("order-%d", i))
		ids = append(ids, id)
		o := readyOrder(id, dropoffAtKm(base, float64(i)*0.05), testNow.Add(time.Duration(i)*time.Second))
		c := o
		store.orders[id] = &c
	}
	svc := newTestService(store, &recordingNotifier{})

	var wg sync.WaitGroup
	errs := make(chan error, n)
	start := make(chan struct{})
	for _, id := range ids {
		wg.Add(1)
		go func(oid types.ID) {
			defer wg.Done()
			<-start
			_, err := svc.OnOrderReady(ctx, oid)
			errs <- err
		}(id)
	}

	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	for _, id := range ids {
		o, err := store.Get(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if o.BatchID == nil {
			t.Errorf("order %s left unclaimed", id)
		}
		if refs := store.routesReferencing(id); refs > 1 {
			t.Errorf("order %s referenced by %d routes, want at most 1", id, refs)
		}
	}
}

// TestConcurrentRepeatTriggers_NoSideEffects hammers the same order with
// duplicate triggers; exactly one claim must happen.
func TestConcurrentRepeatTriggers_NoSideEffects(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(readyOrder("dup", types.Point{Lat: 25.04, Lng: 121.55}, testNow))
	svc := newTestService(store, &recordingNotifier{})

	const attempts = 10
	var wg sync.WaitGroup
	batchIDs := make(chan types.ID, attempts)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			out, err := svc.OnOrderReady(ctx, "dup")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			batchIDs <- out.BatchID
		}()
	}

	close(start)
	wg.Wait()
	close(batchIDs)

	o, err := store.Get(ctx, "dup")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.BatchID == nil {
		t.Fatal("order left unclaimed")
	}
	for id := range batchIDs {
		if id != "" && id != *o.BatchID {
			t.Errorf("trigger observed batch id %s, persisted %s", id, *o.BatchID)
		}
	}
}
