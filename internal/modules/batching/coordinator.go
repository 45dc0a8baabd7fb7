// README: Atomic route-claim coordination between concurrent clustering attempts.
package batching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tavolo/internal/modules/order"
	"tavolo/internal/types"
)

var (
	// ErrConflict means a concurrent trigger claimed one of the orders
	// first. Expected under load; callers retry or fall back to solo.
	ErrConflict = errors.New("route claim conflict")
	// ErrNotClusterable means the pair was never a valid batch (different
	// stores, already claimed). A programming or data error, not a race.
	ErrNotClusterable = errors.New("orders not clusterable")
)

// ClaimStore performs the all-or-nothing claim: persist the route and set
// batch_id on every stop, aborting with ErrConflict if any stop is already
// claimed. Implementations must guarantee no partial state.
type ClaimStore interface {
	CreateRoute(ctx context.Context, r *Route) error
}

// Coordinator owns route identity generation and the claim attempt. All
// cross-order mutation in the engine funnels through TryCreateRoute; the
// backing transaction is the load-bearing correctness mechanism, everything
// upstream (scoring, clustering) is advisory and recomputable.
type Coordinator struct {
	store ClaimStore
	log   *logrus.Logger
	now   func() time.Time
}

func NewCoordinator(store ClaimStore, log *logrus.Logger) *Coordinator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{store: store, log: log, now: time.Now}
}

// TryCreateRoute claims both orders into a new two-stop route. On success
// both orders' batch_id point at the returned route; on ErrConflict nothing
// was written.
func (c *Coordinator) TryCreateRoute(ctx context.Context, a, b order.Order, savings types.Money) (*Route, error) {
	if a.ID == b.ID || a.StoreID != b.StoreID {
		return nil, ErrNotClusterable
	}
	// Fast pre-check; the transaction re-checks authoritatively.
	if a.Batched() || b.Batched() {
		return nil, ErrConflict
	}

	r := &Route{
		ID:               types.ID(uuid.NewString()),
		StoreID:          a.StoreID,
		StopOrderIDs:     []types.ID{a.ID, b.ID},
		Status:           StatusPendingDriver,
		CreatedAt:        c.now().UTC(),
		EstimatedSavings: savings,
	}

	if err := c.store.CreateRoute(ctx, r); err != nil {
		if errors.Is(err, ErrConflict) {
			c.log.WithFields(logrus.Fields{
				"store_id": a.StoreID,
				"order_a":  a.ID,
				"order_b":  b.ID,
			}).Info("route claim lost to concurrent trigger")
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create route: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"route_id": r.ID,
		"store_id": r.StoreID,
		"stops":    len(r.StopOrderIDs),
	}).Info("route created")
	return r, nil
}
