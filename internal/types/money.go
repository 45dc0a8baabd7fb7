// README: Common money value object used across modules.
package types

// Money is an integer amount in the smallest currency unit (cents).
type Money struct {
	Amount   int64
	Currency string
}

// Add returns a + b. Both operands must share a currency; mismatches
// return a zero Money rather than silently mixing units.
func (m Money) Add(other Money) Money {
	if m.Currency != other.Currency {
		return Money{}
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}
}

// Sub returns a - b, floored at zero. Used for savings figures that are
// displayed to operators and must never read as negative.
func (m Money) Sub(other Money) Money {
	if m.Currency != other.Currency {
		return Money{}
	}
	amount := m.Amount - other.Amount
	if amount < 0 {
		amount = 0
	}
	return Money{Amount: amount, Currency: m.Currency}
}
