// Package worker keeps the local snapshots and the external ledger caught up
// with the store. It consumes change messages from AMQP and runs a periodic
// reconcile as a backup for lost messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"oomsin/internal/amqp"
	"oomsin/internal/core"
	"oomsin/internal/export"
	"oomsin/internal/kv"
	"oomsin/internal/services"
	"oomsin/internal/store"
)

// keyLedgerCursor stores the CreatedAt of the last transaction exported to the
// external ledger, so reconcile runs can resume where they left off.
const keyLedgerCursor = "ledger_cursor"

// TransactionSnapshot is the month list persisted for offline reads.
type TransactionSnapshot struct {
	Year      int                `json:"year"`
	Month     int                `json:"month"`
	UpdatedAt time.Time          `json:"updated_at"`
	Items     []core.Transaction `json:"items"`
}

// GoalSnapshot is the goal list persisted for offline reads, with remaining
// amounts already recomputed.
type GoalSnapshot struct {
	UpdatedAt time.Time   `json:"updated_at"`
	Items     []core.Goal `json:"items"`
}

type ledgerCursor struct {
	After time.Time `json:"after"`
}

// MirrorWorker refreshes the kv snapshots and appends new transactions to the
// external ledger.
type MirrorWorker struct {
	store     store.Store
	snapshots *kv.Store
	goals     *services.GoalService
	ledger    export.LedgerWriter
	batchSize int
}

func NewMirrorWorker(st store.Store, snapshots *kv.Store, goals *services.GoalService, ledger export.LedgerWriter, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		store:     st,
		snapshots: snapshots,
		goals:     goals,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleChangeMessage refreshes the snapshot named by the message topic.
// Returning an error makes the broker requeue the message.
func (w *MirrorWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ChangeMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		"topic", msg.Topic, "op", msg.Op, "id", msg.ID)

	switch store.Topic(msg.Topic) {
	case store.TopicExpense:
		return w.refreshTransactions(ctx, core.Expense)
	case store.TopicIncome:
		return w.refreshTransactions(ctx, core.Income)
	case store.TopicGoals:
		return w.refreshGoals(ctx)
	default:
		slog.WarnContext(ctx, "Unknown change topic, dropping", "topic", msg.Topic)
		return nil
	}
}

// ReconcileAll refreshes every snapshot, reconciles stored goal amounts and
// exports transactions the ledger has not seen yet. It is safe to run at any
// time; a second run right after changes nothing.
func (w *MirrorWorker) ReconcileAll(ctx context.Context) error {
	if err := w.refreshTransactions(ctx, core.Expense); err != nil {
		return fmt.Errorf("refresh expense snapshot: %w", err)
	}
	if err := w.refreshTransactions(ctx, core.Income); err != nil {
		return fmt.Errorf("refresh income snapshot: %w", err)
	}

	changed, err := w.goals.Recompute(ctx)
	if err != nil {
		return fmt.Errorf("recompute goals: %w", err)
	}
	if changed > 0 {
		slog.InfoContext(ctx, "Reconciled goal amounts", "count", changed)
	}

	if err := w.refreshGoals(ctx); err != nil {
		return fmt.Errorf("refresh goal snapshot: %w", err)
	}

	if err := w.exportPending(ctx); err != nil {
		// The ledger is a best-effort mirror; log and move on.
		slog.ErrorContext(ctx, "Failed to export pending transactions", "error", err)
	}

	return nil
}

// RunReconcileLoop reconciles once at startup and then on every tick until the
// context ends.
func (w *MirrorWorker) RunReconcileLoop(ctx context.Context, interval time.Duration) error {
	if err := w.ReconcileAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup reconcile failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ReconcileAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Reconcile failed", "error", err)
			}
		}
	}
}

func (w *MirrorWorker) refreshTransactions(ctx context.Context, kind core.Kind) error {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	txns, err := w.store.ListMonth(ctx, kind, year, month)
	if err != nil {
		return fmt.Errorf("list month: %w", err)
	}

	snap := TransactionSnapshot{
		Year:      year,
		Month:     month,
		UpdatedAt: now,
		Items:     txns,
	}
	if err := w.snapshots.Set(keyFor(kind), snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Refreshed transaction snapshot",
		"kind", kind, "year", year, "month", month, "count", len(txns))
	return nil
}

func (w *MirrorWorker) refreshGoals(ctx context.Context) error {
	goals, err := w.goals.List(ctx)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}

	snap := GoalSnapshot{UpdatedAt: time.Now().UTC(), Items: goals}
	if err := w.snapshots.Set(kv.KeyGoals, snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Refreshed goal snapshot", "count", len(goals))
	return nil
}

// exportPending appends to the ledger every transaction created after the
// stored cursor, whatever month it falls in, oldest first, at most batchSize
// per run.
func (w *MirrorWorker) exportPending(ctx context.Context) error {
	if w.ledger == nil {
		return nil
	}

	var cursor ledgerCursor
	if _, err := w.snapshots.Get(keyLedgerCursor, &cursor); err != nil {
		return fmt.Errorf("read ledger cursor: %w", err)
	}

	var pending []core.Transaction
	for _, kind := range []core.Kind{core.Expense, core.Income} {
		txns, err := w.store.ListCreatedAfter(ctx, kind, cursor.After)
		if err != nil {
			return fmt.Errorf("list pending transactions: %w", err)
		}
		pending = append(pending, txns...)
	}
	if len(pending) == 0 {
		return nil
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > w.batchSize {
		pending = pending[:w.batchSize]
	}

	exported := 0
	for _, t := range pending {
		if err := w.ledger.AppendRow(ctx, t); err != nil {
			// Stop at the first failure so the cursor never skips a row.
			break
		}
		cursor.After = t.CreatedAt
		exported++
	}

	if exported > 0 {
		if err := w.snapshots.Set(keyLedgerCursor, cursor); err != nil {
			return fmt.Errorf("write ledger cursor: %w", err)
		}
		slog.InfoContext(ctx, "Exported transactions to ledger",
			"count", exported, "cursor", cursor.After)
	}
	return nil
}

func keyFor(kind core.Kind) string {
	if kind == core.Income {
		return kv.KeyIncome
	}
	return kv.KeyExpense
}
