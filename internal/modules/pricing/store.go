// README: Rate card store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRateNotFound = errors.New("rate not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetRate(ctx context.Context, tier string) (Rate, error) {
	row := s.db.QueryRow(ctx, `
		SELECT tier, base_fare, per_km, per_stop, currency
		FROM delivery_rates
		WHERE tier = $1`, tier,
	)
	var r Rate
	err := row.Scan(&r.Tier, &r.BaseFare, &r.PerKm, &r.PerStop, &r.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrRateNotFound
	}
	if err != nil {
		return Rate{}, err
	}
	return r, nil
}
