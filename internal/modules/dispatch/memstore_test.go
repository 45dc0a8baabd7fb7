// README: In-memory order/route store used by orchestrator tests.
package dispatch

import (
	"context"
	"sort"
	"sync"

	"tavolo/internal/modules/batching"
	"tavolo/internal/modules/order"
	"tavolo/internal/types"
)

// memStore backs both the order store and the claim store with one mutex,
// mimicking the single transactional backend: the pair claim observes and
// publishes batch ids atomically with respect to every other operation.
type memStore struct {
	mu     sync.Mutex
	orders map[types.ID]*order.Order
	routes map[types.ID]*batching.Route

	failList error // ListReadyUnbatched returns this when set
	failSolo error // ClaimSolo returns this when set
}

func newMemStore(orders ...order.Order) *memStore {
	m := &memStore{
		orders: make(map[types.ID]*order.Order),
		routes: make(map[types.ID]*batching.Route),
	}
	for _, o := range orders {
		c := o
		m.orders[o.ID] = &c
	}
	return m
}

func (m *memStore) Get(_ context.Context, id types.ID) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	c := *o
	return &c, nil
}

func (m *memStore) ListReadyUnbatched(_ context.Context, storeID, exclude types.ID) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	var out []order.Order
	for _, o := range m.orders {
		if o.StoreID != storeID || o.ID == exclude {
			continue
		}
		if o.Status != order.StatusReady || o.BatchID != nil {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReadyAt.Before(out[j].ReadyAt) })
	return out, nil
}

func (m *memStore) ClaimSolo(_ context.Context, id, batchID types.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSolo != nil {
		return false, m.failSolo
	}
	o, ok := m.orders[id]
	if !ok {
		return false, order.ErrNotFound
	}
	if o.BatchID != nil {
		return false, nil
	}
	o.BatchID = &batchID
	return true, nil
}

// CreateRoute implements batching.ClaimStore: all-or-nothing under the
// shared lock.
func (m *memStore) CreateRoute(_ context.Context, r *batching.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range r.StopOrderIDs {
		o, ok := m.orders[id]
		if !ok || o.BatchID != nil {
			return batching.ErrConflict
		}
	}
	for _, id := range r.StopOrderIDs {
		rid := r.ID
		m.orders[id].BatchID = &rid
	}
	m.routes[r.ID] = r
	return nil
}

func (m *memStore) routesReferencing(orderID types.ID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.routes {
		for _, stop := range r.StopOrderIDs {
			if stop == orderID {
				n++
			}
		}
	}
	return n
}

func (m *memStore) routeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.routes)
}

// recordingNotifier captures emitted events for assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	routes    []RouteCreatedEvent
	couriers  []CourierSuggestedEvent
	returnErr error
}

func (n *recordingNotifier) RouteCreated(_ context.Context, e RouteCreatedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, e)
	return n.returnErr
}

func (n *recordingNotifier) CourierSuggested(_ context.Context, e CourierSuggestedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.couriers = append(n.couriers, e)
	return n.returnErr
}

func (n *recordingNotifier) routeEvents() []RouteCreatedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]RouteCreatedEvent(nil), n.routes...)
}

func (n *recordingNotifier) courierEvents() []CourierSuggestedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]CourierSuggestedEvent(nil), n.couriers...)
}
