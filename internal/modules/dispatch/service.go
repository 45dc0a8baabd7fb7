// README: Dispatch orchestrator; batching on order-ready events and courier suggestion.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tavolo/internal/geo"
	"tavolo/internal/modules/batching"
	"tavolo/internal/modules/courier"
	"tavolo/internal/modules/order"
	"tavolo/internal/types"
)

var (
	// ErrNoCandidate means the courier pool was empty or entirely
	// offline. A normal operational condition for the UI to message.
	ErrNoCandidate = errors.New("no eligible courier")
	// ErrNotDispatchable means the order is not in the ready state.
	ErrNotDispatchable = errors.New("order is not ready for dispatch")
)

// OrderStore is the slice of order persistence the orchestrator needs.
type OrderStore interface {
	Get(ctx context.Context, id types.ID) (*order.Order, error)
	ListReadyUnbatched(ctx context.Context, storeID, exclude types.ID) ([]order.Order, error)
	ClaimSolo(ctx context.Context, id, batchID types.ID) (bool, error)
}

// RouteCreator performs the atomic pair claim.
type RouteCreator interface {
	TryCreateRoute(ctx context.Context, a, b order.Order, savings types.Money) (*batching.Route, error)
}

// CourierSource lists live couriers; the orchestrator never writes them.
type CourierSource interface {
	ListByStore(ctx context.Context, storeID types.ID) ([]courier.Courier, error)
}

// FeeEstimator prices a trip for the operator-facing savings figure.
type FeeEstimator interface {
	Estimate(ctx context.Context, distanceKm float64, tier string, stops int) (types.Money, error)
}

// EtaOracle is the optional external routing service. When absent or
// failing, ETAs degrade to the straight-line estimate.
type EtaOracle interface {
	EtaMinutes(ctx context.Context, origin, destination types.Point) (int, error)
}

type Config struct {
	RadiusKm                float64
	AvgSpeedKmh             float64
	MaxAcceptableEtaMinutes int
}

type Deps struct {
	Orders   OrderStore
	Routes   RouteCreator
	Couriers CourierSource
	Pricing  FeeEstimator
	Notifier Notifier
	Oracle   EtaOracle
}

type Service struct {
	orders   OrderStore
	routes   RouteCreator
	couriers CourierSource
	pricing  FeeEstimator
	notifier Notifier
	oracle   EtaOracle
	cfg      Config
	log      *logrus.Logger
	now      func() time.Time
}

func NewService(deps Deps, cfg Config, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if deps.Notifier == nil {
		deps.Notifier = NewLogNotifier(log)
	}
	if cfg.RadiusKm <= 0 {
		cfg.RadiusKm = batching.DefaultRadiusKm
	}
	if cfg.AvgSpeedKmh <= 0 {
		cfg.AvgSpeedKmh = geo.DefaultAvgSpeedKmh
	}
	if cfg.MaxAcceptableEtaMinutes <= 0 {
		cfg.MaxAcceptableEtaMinutes = courier.DefaultMaxAcceptableEtaMinutes
	}
	return &Service{
		orders:   deps.Orders,
		routes:   deps.Routes,
		couriers: deps.Couriers,
		pricing:  deps.Pricing,
		notifier: deps.Notifier,
		oracle:   deps.Oracle,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Outcome reports how an order-ready event resolved.
type Outcome struct {
	OrderID        types.ID
	BatchID        types.ID
	Route          *batching.Route // nil for solo dispatch
	AlreadyBatched bool
}

// OnOrderReady handles the ready-for-pickup transition: look for a batching
// partner, attempt the atomic claim (one automatic retry on conflict), and
// otherwise claim a synthetic solo batch. Clustering is best-effort layered
// on a solo path that must succeed; only a failure to write the solo claim
// is a hard error.
//
// Idempotent: an order that already carries a batch id is a no-op.
func (s *Service) OnOrderReady(ctx context.Context, orderID types.ID) (*Outcome, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}
	if o.Batched() {
		return &Outcome{OrderID: o.ID, BatchID: *o.BatchID, AlreadyBatched: true}, nil
	}
	if o.Status != order.StatusReady {
		return nil, ErrNotDispatchable
	}

	if route, ok := s.tryBatch(ctx, o); ok {
		return &Outcome{OrderID: o.ID, BatchID: route.ID, Route: route}, nil
	}
	return s.dispatchSolo(ctx, o)
}

// tryBatch attempts clustering. Any failure here only costs routing
// efficiency, so errors are logged and swallowed; ok=false sends the caller
// down the solo path. Conflicts get exactly one re-evaluation with a fresh
// candidate pool, then we stop competing to bound latency.
func (s *Service) tryBatch(ctx context.Context, o *order.Order) (*batching.Route, bool) {
	const claimAttempts = 2

	for attempt := 0; attempt < claimAttempts; attempt++ {
		pool, err := s.orders.ListReadyUnbatched(ctx, o.StoreID, o.ID)
		if err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).
				Warn("candidate pool unavailable, falling back to solo dispatch")
			return nil, false
		}

		partner, ok := batching.FindPartner(*o, pool, s.cfg.RadiusKm)
		if !ok {
			return nil, false
		}

		route, err := s.routes.TryCreateRoute(ctx, *o, partner, s.estimateSavings(ctx, *o, partner))
		if err == nil {
			s.emitRouteCreated(ctx, route)
			return route, true
		}
		if errors.Is(err, batching.ErrConflict) {
			// Partner (or this order) was claimed under us; re-query once.
			continue
		}
		s.log.WithError(err).WithField("order_id", o.ID).
			Error("route creation failed, falling back to solo dispatch")
		return nil, false
	}

	s.log.WithField("order_id", o.ID).Info("batching contention, degrading to solo dispatch")
	return nil, false
}

// dispatchSolo claims a synthetic single-order batch. A single-row CAS,
// no cross-document coordination needed.
func (s *Service) dispatchSolo(ctx context.Context, o *order.Order) (*Outcome, error) {
	batchID := types.ID("solo-" + uuid.NewString())

	claimed, err := s.orders.ClaimSolo(ctx, o.ID, batchID)
	if err != nil {
		return nil, fmt.Errorf("solo dispatch for order %s: %w", o.ID, err)
	}
	if !claimed {
		// A concurrent trigger claimed the order while we were clustering.
		current, err := s.orders.Get(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("reload order %s after lost claim: %w", o.ID, err)
		}
		out := &Outcome{OrderID: o.ID, AlreadyBatched: true}
		if current.BatchID != nil {
			out.BatchID = *current.BatchID
		}
		return out, nil
	}

	s.log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"store_id": o.StoreID,
		"batch_id": batchID,
	}).Info("order solo dispatched")
	return &Outcome{OrderID: o.ID, BatchID: batchID}, nil
}

// estimateSavings prices the shared route against two solo runs
// (soloA + soloB - batch). Display-only; pricing failures collapse to a
// zero figure rather than blocking the claim.
func (s *Service) estimateSavings(ctx context.Context, a, b order.Order) types.Money {
	if s.pricing == nil {
		return types.Money{}
	}

	soloA, errA := s.pricing.Estimate(ctx, geo.DistanceKm(a.Pickup, a.Dropoff), string(a.Priority), 1)
	soloB, errB := s.pricing.Estimate(ctx, geo.DistanceKm(b.Pickup, b.Dropoff), string(b.Priority), 1)
	batchDistance := geo.DistanceKm(a.Pickup, a.Dropoff) + geo.DistanceKm(a.Dropoff, b.Dropoff)
	batch, errC := s.pricing.Estimate(ctx, batchDistance, string(a.Priority), 2)
	if errA != nil || errB != nil || errC != nil {
		s.log.WithField("order_a", a.ID).Warn("savings estimate unavailable")
		return types.Money{}
	}

	return soloA.Add(soloB).Sub(batch)
}

// Suggestion is a courier pick annotated with advisory delay risk.
type Suggestion struct {
	Courier courier.ScoredCourier
	Delay   courier.DelayAssessment
}

// SelectCourier ranks the given pool against the pickup and annotates the
// winner with a delay-risk verdict. ErrNoCandidate when nothing is
// selectable; never panics or errors on imperfect couriers.
func (s *Service) SelectCourier(ctx context.Context, pickup types.Point, pool []courier.Courier, deadline *time.Time) (Suggestion, error) {
	best, ok := courier.SelectBest(pool, pickup, s.now())
	if !ok {
		return Suggestion{}, ErrNoCandidate
	}

	eta := s.etaMinutes(ctx, best, pickup)
	delay := courier.AssessDelayRisk(eta, deadline, s.now(), s.cfg.MaxAcceptableEtaMinutes)

	s.emitCourierSuggested(ctx, best, delay)
	return Suggestion{Courier: best, Delay: delay}, nil
}

// SuggestForStore loads the store's live courier pool and selects.
func (s *Service) SuggestForStore(ctx context.Context, storeID types.ID, pickup types.Point, deadline *time.Time) (Suggestion, error) {
	pool, err := s.couriers.ListByStore(ctx, storeID)
	if err != nil {
		return Suggestion{}, fmt.Errorf("load couriers for store %s: %w", storeID, err)
	}
	return s.SelectCourier(ctx, pickup, pool, deadline)
}

// RankCouriers returns the full ranked list for the manual-override UI.
func (s *Service) RankCouriers(ctx context.Context, storeID types.ID, pickup types.Point) ([]courier.ScoredCourier, error) {
	pool, err := s.couriers.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load couriers for store %s: %w", storeID, err)
	}
	return courier.Rank(pool, pickup, s.now()), nil
}

func (s *Service) etaMinutes(ctx context.Context, sc courier.ScoredCourier, pickup types.Point) int {
	eta := geo.EstimateEtaMinutes(sc.DistanceKm, s.cfg.AvgSpeedKmh)
	if s.oracle == nil {
		return eta
	}
	m, err := s.oracle.EtaMinutes(ctx, sc.Courier.Location, pickup)
	if err != nil {
		s.log.WithError(err).Warn("routing oracle unavailable, using straight-line eta")
		return eta
	}
	return m
}

func (s *Service) emitRouteCreated(ctx context.Context, r *batching.Route) {
	err := s.notifier.RouteCreated(ctx, RouteCreatedEvent{
		RouteID:          r.ID,
		StoreID:          r.StoreID,
		OrderIDs:         r.StopOrderIDs,
		EstimatedSavings: r.EstimatedSavings,
	})
	if err != nil {
		s.log.WithError(err).WithField("route_id", r.ID).Warn("route-created notification failed")
	}
}

func (s *Service) emitCourierSuggested(ctx context.Context, sc courier.ScoredCourier, delay courier.DelayAssessment) {
	err := s.notifier.CourierSuggested(ctx, CourierSuggestedEvent{
		CourierID:  sc.Courier.ID,
		StoreID:    sc.Courier.StoreID,
		Score:      sc.Score,
		EtaMinutes: delay.EtaMinutes,
		AtRisk:     delay.AtRisk,
	})
	if err != nil {
		s.log.WithError(err).WithField("courier_id", sc.Courier.ID).Warn("courier-suggested notification failed")
	}
}
