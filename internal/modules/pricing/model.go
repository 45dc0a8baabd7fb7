// README: Delivery fee rate definitions per priority tier.
package pricing

// Rate is the fee schedule for one priority tier. Amounts are integer
// cents.
type Rate struct {
	Tier     string
	BaseFare int64
	PerKm    int64
	PerStop  int64 // surcharge for each stop beyond the first
	Currency string
}

// defaultRate applies when the rate card has no row for a tier, so fee
// estimation (and the savings figure built on it) keeps working with an
// unseeded database.
var defaultRate = Rate{
	Tier:     "normal",
	BaseFare: 250,
	PerKm:    120,
	PerStop:  100,
	Currency: "USD",
}
