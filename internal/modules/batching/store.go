// README: Route store backed by PostgreSQL; owns the two-order claim transaction.
package batching

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tavolo/internal/types"
)

var ErrNotFound = errors.New("route not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// CreateRoute inserts the route and claims every stop in one transaction.
// Each stop update carries `batch_id IS NULL` in its predicate; if any
// update misses (a concurrent claim won), the whole transaction rolls back
// and ErrConflict is returned. No partial state can escape.
func (s *Store) CreateRoute(ctx context.Context, r *Route) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin claim tx: %w", err)
	}
	defer tx.Rollback(ctx)

	stopIDs := make([]string, len(r.StopOrderIDs))
	for i, id := range r.StopOrderIDs {
		stopIDs[i] = string(id)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO routes (id, store_id, stop_order_ids, status, created_at, estimated_savings, savings_currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(r.ID),
		string(r.StoreID),
		stopIDs,
		string(r.Status),
		r.CreatedAt,
		r.EstimatedSavings.Amount,
		r.EstimatedSavings.Currency,
	)
	if err != nil {
		return fmt.Errorf("insert route: %w", err)
	}

	for _, orderID := range r.StopOrderIDs {
		tag, err := tx.Exec(ctx, `
			UPDATE orders
			SET batch_id = $1
			WHERE id = $2 AND batch_id IS NULL`,
			string(r.ID), string(orderID),
		)
		if err != nil {
			return fmt.Errorf("claim order %s: %w", orderID, err)
		}
		if tag.RowsAffected() != 1 {
			return ErrConflict
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Route, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, store_id, stop_order_ids, status, created_at, estimated_savings, savings_currency
		FROM routes
		WHERE id = $1`, string(id),
	)

	var r Route
	var stops []string
	err := row.Scan(&r.ID, &r.StoreID, &stops, &r.Status, &r.CreatedAt,
		&r.EstimatedSavings.Amount, &r.EstimatedSavings.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.StopOrderIDs = make([]types.ID, len(stops))
	for i, st := range stops {
		r.StopOrderIDs[i] = types.ID(st)
	}
	return &r, nil
}

// UpdateStatus advances the route lifecycle with a CAS on the previous
// status so progression stays monotonic under concurrent updates.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to RouteStatus) (bool, error) {
	if !CanTransition(from, to) {
		return false, nil
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE routes SET status = $1 WHERE id = $2 AND status = $3`,
		string(to), string(id), string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Cancel marks a non-terminal route cancelled and releases its member
// orders back to the unclaimed pool, in one transaction, so they can be
// re-clustered or solo-dispatched.
func (s *Store) Cancel(ctx context.Context, id types.ID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cancel tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE routes
		SET status = 'cancelled'
		WHERE id = $1 AND status IN ('pending_driver', 'assigned', 'in_progress')`,
		string(id),
	)
	if err != nil {
		return fmt.Errorf("cancel route: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET batch_id = NULL WHERE batch_id = $1`, string(id),
	); err != nil {
		return fmt.Errorf("release route orders: %w", err)
	}

	return tx.Commit(ctx)
}
