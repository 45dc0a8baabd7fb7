// README: Order store backed by PostgreSQL.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tavolo/internal/types"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrInvalidState = errors.New("invalid order state transition")
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, o *Order) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO orders (
			id, store_id, status, priority,
			pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
			ready_at, deadline, batch_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		string(o.ID),
		string(o.StoreID),
		string(o.Status),
		string(o.Priority),
		o.Pickup.Lat, o.Pickup.Lng,
		o.Dropoff.Lat, o.Dropoff.Lng,
		nullableTime(o.ReadyAt),
		o.Deadline,
		idPtrToStringPtr(o.BatchID),
		o.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, store_id, status, priority,
		       pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
		       ready_at, deadline, batch_id, created_at
		FROM orders
		WHERE id = $1`, string(id),
	)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// MarkReady transitions the order into the dispatchable state. The CAS on
// status makes the call idempotent: a second invocation matches the
// status='ready' branch and leaves ready_at untouched.
func (s *Store) MarkReady(ctx context.Context, id types.ID, readyAt time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = 'ready',
		    ready_at = COALESCE(ready_at, $2)
		WHERE id = $1 AND status IN ('preparing', 'ready')`,
		string(id), readyAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		exists, err := s.exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInvalidState
	}
	return nil
}

// ListReadyUnbatched returns the clustering candidate pool: ready orders of
// the store with no batch claim, excluding the order being dispatched.
func (s *Store) ListReadyUnbatched(ctx context.Context, storeID, exclude types.ID) ([]Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, store_id, status, priority,
		       pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
		       ready_at, deadline, batch_id, created_at
		FROM orders
		WHERE store_id = $1
		  AND status = 'ready'
		  AND batch_id IS NULL
		  AND id <> $2
		ORDER BY ready_at`, string(storeID), string(exclude),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// ClaimSolo sets a synthetic single-order batch id. A plain compare-and-set
// on batch_id IS NULL; no transaction needed for a single row. Returns
// false when another claim won.
func (s *Store) ClaimSolo(ctx context.Context, id, batchID types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET batch_id = $2
		WHERE id = $1 AND batch_id IS NULL`,
		string(id), string(batchID),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) exists(ctx context.Context, id types.ID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, string(id),
	).Scan(&exists)
	return exists, err
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var readyAt, deadline *time.Time
	var batchID *string

	err := row.Scan(
		&o.ID, &o.StoreID, &o.Status, &o.Priority,
		&o.Pickup.Lat, &o.Pickup.Lng, &o.Dropoff.Lat, &o.Dropoff.Lng,
		&readyAt, &deadline, &batchID, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if readyAt != nil {
		o.ReadyAt = *readyAt
	}
	o.Deadline = deadline
	if batchID != nil {
		b := types.ID(*batchID)
		o.BatchID = &b
	}
	return &o, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func idPtrToStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
