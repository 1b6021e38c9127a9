// Package store defines the ports the services speak to the document store
// through, plus the change feed screens subscribe to.
package store

import (
	"context"
	"errors"
	"time"

	"oomsin/internal/core"
)

// ErrNotFound is returned when a transaction or goal no longer exists, so
// deletes and updates against vanished records fail loudly instead of
// silently.
var ErrNotFound = errors.New("record not found")

// Ports for outbound adapters.
type (
	// CategoryStore serves the seeded category sets. Read-only from the
	// client's perspective.
	CategoryStore interface {
		ListCategories(ctx context.Context, kind core.Kind) ([]core.Category, error)
	}

	// TransactionStore is append/delete only; transactions are never edited.
	TransactionStore interface {
		AppendTransaction(ctx context.Context, t core.Transaction) error
		// ListMonth returns the kind's transactions whose CreatedAt falls in
		// [from, to) for the given month, in store-assigned order.
		ListMonth(ctx context.Context, kind core.Kind, year, month int) ([]core.Transaction, error)
		// ListAfter returns transactions of either kind with the given title
		// created strictly after since. Used by goal reconciliation.
		ListAfter(ctx context.Context, title string, since time.Time) ([]core.Transaction, error)
		// ListCreatedAfter returns the kind's transactions created strictly
		// after since, across months, oldest first. Used by the ledger export
		// so a record behind the cursor is never skipped over a month rollover.
		ListCreatedAfter(ctx context.Context, kind core.Kind, since time.Time) ([]core.Transaction, error)
		DeleteTransaction(ctx context.Context, kind core.Kind, id string) (core.Transaction, error)
	}

	GoalStore interface {
		ListGoals(ctx context.Context) ([]core.Goal, error)
		// GetGoalByTitle returns ErrNotFound when no goal targets the title.
		GetGoalByTitle(ctx context.Context, title string) (core.Goal, error)
		// PutGoal inserts the goal or, when one with the same title exists,
		// overwrites it in place keeping the stored id and creation time.
		PutGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		// UpdateGoalAmounts rewrites only the target and remaining amounts.
		UpdateGoalAmounts(ctx context.Context, id string, amount, remaining core.Money) error
		DeleteGoal(ctx context.Context, id string) (core.Goal, error)
	}
)

// Store is the unified backend the binaries wire up.
type Store interface {
	CategoryStore
	TransactionStore
	GoalStore
}
