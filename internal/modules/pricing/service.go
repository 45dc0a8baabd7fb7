// README: Pricing service computes delivery fee estimates.
package pricing

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"tavolo/internal/types"
)

// RateSource abstracts the rate card so tests run without a database.
type RateSource interface {
	GetRate(ctx context.Context, tier string) (Rate, error)
}

type Service struct {
	rates RateSource
	log   *logrus.Logger
}

func NewService(rates RateSource, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{rates: rates, log: log}
}

// Estimate computes the fee for a trip of the given length and stop count.
// Fees feed operator-facing savings figures, not billing, so a missing or
// unreadable rate card degrades to the built-in default instead of failing
// the dispatch path.
func (s *Service) Estimate(ctx context.Context, distanceKm float64, tier string, stops int) (types.Money, error) {
	rate := defaultRate
	if s.rates != nil {
		r, err := s.rates.GetRate(ctx, tier)
		switch {
		case err == nil:
			rate = r
		case err == ErrRateNotFound:
			// unseeded tier, default applies
		default:
			s.log.WithError(err).WithField("tier", tier).Warn("rate card unavailable, using default rate")
		}
	}

	if distanceKm < 0 {
		distanceKm = 0
	}
	if stops < 1 {
		stops = 1
	}

	amount := rate.BaseFare +
		int64(math.Round(distanceKm*float64(rate.PerKm))) +
		int64(stops-1)*rate.PerStop

	return types.Money{Amount: amount, Currency: rate.Currency}, nil
}
