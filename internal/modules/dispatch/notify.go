// README: Fire-and-forget notification capability for dispatch events.
package dispatch

import (
	"context"

	"github.com/sirupsen/logrus"

	"tavolo/internal/types"
)

type RouteCreatedEvent struct {
	RouteID          types.ID
	StoreID          types.ID
	OrderIDs         []types.ID
	EstimatedSavings types.Money
}

type CourierSuggestedEvent struct {
	CourierID  types.ID
	StoreID    types.ID
	Score      float64
	EtaMinutes int
	AtRisk     bool
}

// Notifier delivers operator-facing events. Delivery failures are logged
// by the orchestrator, never propagated as dispatch failures.
type Notifier interface {
	RouteCreated(ctx context.Context, e RouteCreatedEvent) error
	CourierSuggested(ctx context.Context, e CourierSuggestedEvent) error
}

// LogNotifier writes events to the log. Stands in until a real push
// channel is wired; also useful in local runs.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) RouteCreated(_ context.Context, e RouteCreatedEvent) error {
	n.log.WithFields(logrus.Fields{
		"route_id": e.RouteID,
		"store_id": e.StoreID,
		"orders":   e.OrderIDs,
		"savings":  e.EstimatedSavings.Amount,
	}).Info("route created")
	return nil
}

func (n *LogNotifier) CourierSuggested(_ context.Context, e CourierSuggestedEvent) error {
	n.log.WithFields(logrus.Fields{
		"courier_id":  e.CourierID,
		"store_id":    e.StoreID,
		"score":       e.Score,
		"eta_minutes": e.EtaMinutes,
		"at_risk":     e.AtRisk,
	}).Info("courier suggested")
	return nil
}
