package core

import "time"

// Matches reports whether the transaction counts against the goal: the titles
// are equal and the transaction was created strictly after the goal.
func (g Goal) Matches(t Transaction) bool {
	return t.Title == g.Title && t.CreatedAt.After(g.CreatedAt)
}

// Remaining computes the goal's remaining amount from scratch: the target
// minus the sum of matching transactions. The function is pure so every read
// path can recompute instead of trusting a possibly stale stored value, and
// reconciliation stays idempotent.
func Remaining(g Goal, txns []Transaction) Money {
	spent := int64(0)
	for _, t := range txns {
		if g.Matches(t) {
			spent += t.Amount.Satang
		}
	}
	return Money{Satang: g.Amount.Satang - spent}
}

// TopUp returns the goal with both the target and the remaining amount raised
// by extra. Applying x then y equals applying x+y once.
func (g Goal) TopUp(extra Money) Goal {
	g.Amount.Satang += extra.Satang
	g.RemainingAmount.Satang += extra.Satang
	return g
}

// Expired reports whether the goal's end date has passed at the given instant.
// Goals without an end date never expire.
func (g Goal) Expired(now time.Time) bool {
	return !g.EndDate.IsZero() && g.EndDate.Before(now)
}
